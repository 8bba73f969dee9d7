package model

import (
	"time"

	"github.com/trm-lab/argus/pkg/domain/types"
)

// RiskAppetite is the evaluated position of one risk category against
// its board-approved tolerance ceiling.
type RiskAppetite struct {
	ID                    int64
	Category              string
	RiskTolerance         float64
	EarlyWarningThreshold float64
	CurrentRiskLevel      float64
	BreachStatus          types.BreachStatus
	EvaluatedAt           time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RiskAppetiteBreach is a point-in-time record of a tolerance violation
type RiskAppetiteBreach struct {
	ID                  int64
	Category            string
	ThresholdExceeded   float64
	ActualLevel         float64
	ExcessAmount        float64
	ContributingFactors []string
	EscalatedToBoard    bool
	BoardActionRequired bool
	ResolvedAt          *time.Time
	ResolutionNotes     string
	CreatedAt           time.Time
}
