package enums

import "fmt"

// AffiliateStatus is the lifecycle state of an affiliate program member.
type AffiliateStatus string

const (
	AffiliateStatusPending   AffiliateStatus = "pending"
	AffiliateStatusActive    AffiliateStatus = "active"
	AffiliateStatusSuspended AffiliateStatus = "suspended"
	AffiliateStatusRejected  AffiliateStatus = "rejected"
)

var validAffiliateStatuses = []AffiliateStatus{
	AffiliateStatusPending,
	AffiliateStatusActive,
	AffiliateStatusSuspended,
	AffiliateStatusRejected,
}

// allowedAffiliateTransitions maps each status to the states an admin may move it to.
var allowedAffiliateTransitions = map[AffiliateStatus][]AffiliateStatus{
	AffiliateStatusPending:   {AffiliateStatusActive, AffiliateStatusRejected},
	AffiliateStatusActive:    {AffiliateStatusSuspended},
	AffiliateStatusSuspended: {AffiliateStatusActive},
	AffiliateStatusRejected:  {},
}

// String implements fmt.Stringer.
func (a AffiliateStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AffiliateStatus.
func (a AffiliateStatus) IsValid() bool {
	for _, candidate := range validAffiliateStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (a AffiliateStatus) CanTransitionTo(next AffiliateStatus) bool {
	for _, candidate := range allowedAffiliateTransitions[a] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseAffiliateStatus converts raw input into an AffiliateStatus.
func ParseAffiliateStatus(value string) (AffiliateStatus, error) {
	for _, candidate := range validAffiliateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid affiliate status %q", value)
}
