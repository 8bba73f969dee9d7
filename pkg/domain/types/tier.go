package types

import (
	"fmt"
	"time"
)

// VendorTier represents the criticality classification of a vendor.
// Tier drives review cadence, monitoring check frequency and risk weighting.
type VendorTier string

const (
	TierCritical VendorTier = "CRITICAL"
	TierHigh     VendorTier = "HIGH"
	TierMedium   VendorTier = "MEDIUM"
	TierLow      VendorTier = "LOW"
)

// AllVendorTiers returns all valid vendor tiers
func AllVendorTiers() []VendorTier {
	return []VendorTier{
		TierCritical,
		TierHigh,
		TierMedium,
		TierLow,
	}
}

// IsValid checks if the vendor tier is valid
func (t VendorTier) IsValid() bool {
	switch t {
	case TierCritical, TierHigh, TierMedium, TierLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the vendor tier
func (t VendorTier) String() string {
	return string(t)
}

// ParseVendorTier parses a string into a VendorTier
func ParseVendorTier(s string) (VendorTier, error) {
	tier := VendorTier(s)
	if !tier.IsValid() {
		return "", fmt.Errorf("invalid vendor tier: %s", s)
	}
	return tier, nil
}

// ReviewInterval returns the periodic review cadence for the tier:
// quarterly for CRITICAL, semiannual for HIGH, annual for MEDIUM and
// biennial for LOW.
func (t VendorTier) ReviewInterval() time.Duration {
	const month = 30 * 24 * time.Hour
	switch t {
	case TierCritical:
		return 3 * month
	case TierHigh:
		return 6 * month
	case TierMedium:
		return 12 * month
	default:
		return 24 * month
	}
}

// CheckInterval returns the continuous monitoring check cadence for the
// tier: daily for CRITICAL, weekly for HIGH, monthly for MEDIUM and
// quarterly for LOW.
func (t VendorTier) CheckInterval() time.Duration {
	const day = 24 * time.Hour
	switch t {
	case TierCritical:
		return day
	case TierHigh:
		return 7 * day
	case TierMedium:
		return 30 * day
	default:
		return 90 * day
	}
}

// AppetiteWeight returns the weighting factor used in risk appetite
// aggregation. Weights are strictly monotonic by tier.
func (t VendorTier) AppetiteWeight() float64 {
	switch t {
	case TierCritical:
		return 4
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	default:
		return 1
	}
}
