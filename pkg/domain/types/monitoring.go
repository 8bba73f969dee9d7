package types

import "fmt"

// MonitoringType identifies the external signal source of a monitoring event
type MonitoringType string

const (
	MonitoringSecurityRating    MonitoringType = "SECURITY_RATING"
	MonitoringDataBreach        MonitoringType = "DATA_BREACH"
	MonitoringCertificateExpiry MonitoringType = "CERTIFICATE_EXPIRY"
	MonitoringNewsMention       MonitoringType = "NEWS_MENTION"
	MonitoringFinancialHealth   MonitoringType = "FINANCIAL_HEALTH"
	MonitoringMergerAcquisition MonitoringType = "MERGER_ACQUISITION"
)

// AllMonitoringTypes returns all valid monitoring types
func AllMonitoringTypes() []MonitoringType {
	return []MonitoringType{
		MonitoringSecurityRating,
		MonitoringDataBreach,
		MonitoringCertificateExpiry,
		MonitoringNewsMention,
		MonitoringFinancialHealth,
		MonitoringMergerAcquisition,
	}
}

// IsValid checks if the monitoring type is valid
func (t MonitoringType) IsValid() bool {
	switch t {
	case MonitoringSecurityRating,
		MonitoringDataBreach,
		MonitoringCertificateExpiry,
		MonitoringNewsMention,
		MonitoringFinancialHealth,
		MonitoringMergerAcquisition:
		return true
	default:
		return false
	}
}

// String returns the string representation of the monitoring type
func (t MonitoringType) String() string {
	return string(t)
}

// ParseMonitoringType parses a string into a MonitoringType
func ParseMonitoringType(s string) (MonitoringType, error) {
	mt := MonitoringType(s)
	if !mt.IsValid() {
		return "", fmt.Errorf("invalid monitoring type: %s", s)
	}
	return mt, nil
}

// IssueType maps the monitoring type to the category of the issue that
// gets auto-created when a signal requires action.
func (t MonitoringType) IssueType() IssueType {
	switch t {
	case MonitoringSecurityRating, MonitoringDataBreach:
		return IssueTypeSecurity
	case MonitoringCertificateExpiry:
		return IssueTypeCompliance
	case MonitoringNewsMention:
		return IssueTypeReputational
	case MonitoringFinancialHealth:
		return IssueTypeFinancial
	default:
		return IssueTypeOperational
	}
}

// RiskLevel is the classified risk of a monitoring signal. The external
// rating feeds use title-case labels, which are preserved on the wire.
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "Critical"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelLow      RiskLevel = "Low"
)

// AllRiskLevels returns all valid risk levels
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelCritical,
		RiskLevelHigh,
		RiskLevelMedium,
		RiskLevelLow,
	}
}

// IsValid checks if the risk level is valid
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelCritical, RiskLevelHigh, RiskLevelMedium, RiskLevelLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level
func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return l, nil
}

// RequiresAction reports whether signals at this level demand follow-up
// (issue creation, possible reassessment).
func (l RiskLevel) RequiresAction() bool {
	return l == RiskLevelCritical || l == RiskLevelHigh
}

// Severity maps the signal risk level to the severity of an auto-created
// vendor issue.
func (l RiskLevel) Severity() IssueSeverity {
	switch l {
	case RiskLevelCritical:
		return SeverityCritical
	case RiskLevelHigh:
		return SeverityHigh
	case RiskLevelMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
