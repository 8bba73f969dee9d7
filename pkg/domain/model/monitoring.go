package model

import (
	"time"

	"github.com/trm-lab/argus/pkg/domain/types"
)

// MonitoringSignal is one external risk observation about a vendor,
// recorded by the continuous monitoring service.
type MonitoringSignal struct {
	ID             string
	VendorID       int64
	MonitoringType types.MonitoringType
	RiskLevel      types.RiskLevel
	RiskIndicator  string
	CurrentValue   string
	PreviousValue  string
	ChangeDetected bool
	RequiresAction bool
	ActionTaken    string
	AcknowledgedBy string
	AcknowledgedAt *time.Time
	ResolvedBy     string
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

// ScheduleEntry is one row of the monitoring scheduling table: when a
// vendor is next due for a check, derived from its tier. The external
// scheduler is responsible for invoking checks at this cadence.
type ScheduleEntry struct {
	VendorID      int64
	VendorName    string
	Tier          types.VendorTier
	CheckInterval time.Duration
	LastCheckedAt *time.Time
	NextCheckAt   time.Time
	Due           bool
}
