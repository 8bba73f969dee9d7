package worker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/usecase"
	"github.com/trm-lab/argus/pkg/utils/logging"
)

// MonitoringSweepWorker walks the monitoring schedule of every registered
// organization and stamps due vendors as checked. Signal ingestion itself
// comes from the API; the sweep keeps the cadence bookkeeping honest so
// the schedule endpoint reflects reality.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type MonitoringSweepWorker struct {
	monitoring *usecase.MonitoringUseCase
	registry   *model.OrgRegistry
	interval   time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// sweepConcurrency caps parallel vendor checks within one organization
const sweepConcurrency = 4

// NewMonitoringSweepWorker creates a worker sweeping at the given interval
func NewMonitoringSweepWorker(monitoring *usecase.MonitoringUseCase, registry *model.OrgRegistry, interval time.Duration) *MonitoringSweepWorker {
	return &MonitoringSweepWorker{
		monitoring: monitoring,
		registry:   registry,
		interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background sweep loop. Does not block server startup.
func (w *MonitoringSweepWorker) Start(ctx context.Context) error {
	logging.Default().Info("monitoring sweep worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *MonitoringSweepWorker) Stop() {
	logging.Default().Info("monitoring sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("monitoring sweep worker stopped")
}

// SweepOnce runs a single sweep cycle without starting the loop. Used by
// the sweep CLI command for cron-driven deployments.
func (w *MonitoringSweepWorker) SweepOnce(ctx context.Context) error {
	return w.sweep(ctx)
}

func (w *MonitoringSweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.sweep(ctx); err != nil {
		logging.Default().Error("initial monitoring sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("monitoring sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("monitoring sweep worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("monitoring sweep worker context cancelled")
			return
		}
	}
}

// sweep performs one cycle over all organizations
func (w *MonitoringSweepWorker) sweep(ctx context.Context) error {
	startTime := time.Now()

	var checked int
	for _, org := range w.registry.Organizations() {
		n, err := w.sweepOrg(ctx, org.ID)
		if err != nil {
			// One broken tenant must not starve the rest
			logging.Default().Error("monitoring sweep failed for organization",
				"orgID", org.ID, "error", err.Error())
			continue
		}
		checked += n
	}

	logging.Default().Info("monitoring sweep completed",
		"checked", checked,
		"duration", time.Since(startTime).String())
	return nil
}

func (w *MonitoringSweepWorker) sweepOrg(ctx context.Context, orgID string) (int, error) {
	entries, err := w.monitoring.Schedule(ctx, orgID)
	if err != nil {
		return 0, err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(sweepConcurrency)

	var due int
	for _, entry := range entries {
		if !entry.Due {
			continue
		}
		due++
		eg.Go(func() error {
			return w.monitoring.MarkChecked(ctx, orgID, entry.VendorID)
		})
	}
	if err := eg.Wait(); err != nil {
		return due, err
	}
	return due, nil
}
