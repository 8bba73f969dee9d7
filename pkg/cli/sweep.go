package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/trm-lab/argus/pkg/cli/config"
	"github.com/trm-lab/argus/pkg/service/worker"
	"github.com/trm-lab/argus/pkg/usecase"
	"github.com/trm-lab/argus/pkg/utils/logging"
	"github.com/trm-lab/argus/pkg/utils/safe"
)

func cmdSweep() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Run one monitoring schedule sweep and exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			registry, _, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, registry)

			w := worker.NewMonitoringSweepWorker(uc.Monitoring, registry, 0)
			if err := w.SweepOnce(ctx); err != nil {
				return goerr.Wrap(err, "monitoring sweep failed")
			}

			logging.Default().Info("Sweep completed")
			return nil
		},
	}
}
