package enums

import "fmt"

// PayoutStatus is the lifecycle state of an affiliate payout request.
type PayoutStatus string

const (
	PayoutStatusRequested PayoutStatus = "requested"
	PayoutStatusPaid      PayoutStatus = "paid"
	PayoutStatusRejected  PayoutStatus = "rejected"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusRequested,
	PayoutStatusPaid,
	PayoutStatusRejected,
}

// String implements fmt.Stringer.
func (p PayoutStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PayoutStatus.
func (p PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutStatus converts raw input into a PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	for _, candidate := range validPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout status %q", value)
}
