package enums

import "fmt"

// ApprovalStatus is the moderation state of a submitted book.
type ApprovalStatus string

const (
	ApprovalStatusUnderReview ApprovalStatus = "under_review"
	ApprovalStatusApproved    ApprovalStatus = "approved"
	ApprovalStatusRejected    ApprovalStatus = "rejected"
	ApprovalStatusArchived    ApprovalStatus = "archived"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusUnderReview,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
	ApprovalStatusArchived,
}

// String implements fmt.Stringer.
func (a ApprovalStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ApprovalStatus.
func (a ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsFinal reports whether the status admits no further review transitions.
func (a ApprovalStatus) IsFinal() bool {
	return a != ApprovalStatusUnderReview
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
