package types

import "fmt"

// VendorStatus represents the lifecycle status of a vendor
type VendorStatus string

const (
	VendorStatusProposed   VendorStatus = "PROPOSED"
	VendorStatusApproved   VendorStatus = "APPROVED"
	VendorStatusActive     VendorStatus = "ACTIVE"
	VendorStatusSuspended  VendorStatus = "SUSPENDED"
	VendorStatusTerminated VendorStatus = "TERMINATED"
)

// AllVendorStatuses returns all valid vendor statuses
func AllVendorStatuses() []VendorStatus {
	return []VendorStatus{
		VendorStatusProposed,
		VendorStatusApproved,
		VendorStatusActive,
		VendorStatusSuspended,
		VendorStatusTerminated,
	}
}

// IsValid checks if the vendor status is valid
func (s VendorStatus) IsValid() bool {
	switch s {
	case VendorStatusProposed,
		VendorStatusApproved,
		VendorStatusActive,
		VendorStatusSuspended,
		VendorStatusTerminated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the vendor status
func (s VendorStatus) String() string {
	return string(s)
}

// ParseVendorStatus parses a string into a VendorStatus
func ParseVendorStatus(s string) (VendorStatus, error) {
	status := VendorStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid vendor status: %s", s)
	}
	return status, nil
}

// IsOperational reports whether vendors in this status are part of the
// active portfolio considered by the analytics components.
func (s VendorStatus) IsOperational() bool {
	return s == VendorStatusApproved || s == VendorStatusActive
}
