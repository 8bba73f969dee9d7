package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/auth"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/service/notify"
)

// UseCases aggregates all application services over one repository,
// one organization registry and one notifier.
type UseCases struct {
	repo     interfaces.Repository
	registry *model.OrgRegistry
	notifier notify.Notifier
	now      func() time.Time

	Vendor     *VendorUseCase
	Approval   *ApprovalUseCase
	Issue      *IssueUseCase
	Monitoring *MonitoringUseCase
	Analytics  *AnalyticsUseCase
	Appetite   *AppetiteUseCase
	Audit      *AuditUseCase
}

type Option func(*UseCases)

// WithNotifier replaces the default no-op notifier
func WithNotifier(n notify.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithClock replaces the wall clock, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, registry *model.OrgRegistry, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		registry: registry,
		notifier: notify.NewNoop(),
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Vendor = &VendorUseCase{repo: repo, now: uc.now}
	uc.Issue = &IssueUseCase{repo: repo, now: uc.now}
	uc.Approval = &ApprovalUseCase{repo: repo, notifier: uc.notifier, now: uc.now, issues: uc.Issue}
	uc.Monitoring = &MonitoringUseCase{repo: repo, registry: registry, approvals: uc.Approval, now: uc.now}
	uc.Analytics = &AnalyticsUseCase{repo: repo}
	uc.Appetite = &AppetiteUseCase{repo: repo, registry: registry, notifier: uc.notifier, now: uc.now}
	uc.Audit = &AuditUseCase{repo: repo}

	return uc
}

// actorFrom returns the authenticated user ID, or "system" for internal
// callers (workers, signal-driven side effects).
func actorFrom(ctx context.Context) string {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return "system"
	}
	return id.UserID
}

// appendAudit records one audit entry, normally inside the same
// transaction as the mutation it describes.
func appendAudit(ctx context.Context, repo interfaces.Repository, orgID, action, entityType, entityID string, detail map[string]string, now time.Time) error {
	return repo.Audit().Append(ctx, orgID, &model.AuditEntry{
		ID:         uuid.NewString(),
		Actor:      actorFrom(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  now,
	})
}

// requirePermission enforces the role capability table when a caller
// identity is present. Internal callers carry no identity and pass.
func requirePermission(ctx context.Context, p types.Permission) error {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil
	}
	if !id.Role.HasPermission(p) {
		return ErrPermissionDenied
	}
	return nil
}
