package types

import "fmt"

// BreachStatus represents the position of a category's aggregate risk
// level relative to its board-approved appetite.
type BreachStatus string

const (
	BreachStatusWithinAppetite   BreachStatus = "WITHIN_APPETITE"
	BreachStatusApproachingLimit BreachStatus = "APPROACHING_LIMIT"
	BreachStatusBreached         BreachStatus = "BREACHED"
)

// AllBreachStatuses returns all valid breach statuses
func AllBreachStatuses() []BreachStatus {
	return []BreachStatus{
		BreachStatusWithinAppetite,
		BreachStatusApproachingLimit,
		BreachStatusBreached,
	}
}

// IsValid checks if the breach status is valid
func (s BreachStatus) IsValid() bool {
	switch s {
	case BreachStatusWithinAppetite, BreachStatusApproachingLimit, BreachStatusBreached:
		return true
	default:
		return false
	}
}

// String returns the string representation of the breach status
func (s BreachStatus) String() string {
	return string(s)
}

// ParseBreachStatus parses a string into a BreachStatus
func ParseBreachStatus(s string) (BreachStatus, error) {
	status := BreachStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid breach status: %s", s)
	}
	return status, nil
}
