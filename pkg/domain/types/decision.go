package types

import "fmt"

// Decision represents an approver's decision on a workflow step.
// A pending step carries no decision (nil in the model).
type Decision string

const (
	DecisionApproved              Decision = "APPROVED"
	DecisionRejected              Decision = "REJECTED"
	DecisionConditionallyApproved Decision = "CONDITIONALLY_APPROVED"
	DecisionEscalated             Decision = "ESCALATED"
	DecisionDeferred              Decision = "DEFERRED"
)

// AllDecisions returns all valid decisions
func AllDecisions() []Decision {
	return []Decision{
		DecisionApproved,
		DecisionRejected,
		DecisionConditionallyApproved,
		DecisionEscalated,
		DecisionDeferred,
	}
}

// IsValid checks if the decision is valid
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApproved,
		DecisionRejected,
		DecisionConditionallyApproved,
		DecisionEscalated,
		DecisionDeferred:
		return true
	default:
		return false
	}
}

// String returns the string representation of the decision
func (d Decision) String() string {
	return string(d)
}

// ParseDecision parses a string into a Decision
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid decision: %s", s)
	}
	return d, nil
}

// Advances reports whether the decision moves the workflow to the next
// step (or completes it on the last step).
func (d Decision) Advances() bool {
	return d == DecisionApproved || d == DecisionConditionallyApproved
}
