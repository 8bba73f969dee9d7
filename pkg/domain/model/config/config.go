package config

// ChainStep is one approver slot in a configured approval chain template
type ChainStep struct {
	ApproverRole   string
	ApproverUserID string
	ApproverName   string
}

// AppetiteDefinition is the board-approved tolerance for one risk
// category. Thresholds are on the 0-100 residual risk scale.
type AppetiteDefinition struct {
	Category              string
	RiskTolerance         float64
	EarlyWarningThreshold float64
}
