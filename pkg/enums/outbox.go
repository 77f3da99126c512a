package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateBook       OutboxAggregateType = "book"
	AggregatePlan       OutboxAggregateType = "review_plan"
	AggregateAffiliate  OutboxAggregateType = "affiliate"
	AggregateCommission OutboxAggregateType = "commission"
	AggregatePayout     OutboxAggregateType = "payout"
	AggregateUser       OutboxAggregateType = "user"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBook,
	AggregatePlan,
	AggregateAffiliate,
	AggregateCommission,
	AggregatePayout,
	AggregateUser,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBookSubmitted          OutboxEventType = "book_submitted"
	EventBookStatusChanged      OutboxEventType = "book_status_changed"
	EventPlanPurchased          OutboxEventType = "plan_purchased"
	EventPlanAttached           OutboxEventType = "plan_attached"
	EventPlanCompleted          OutboxEventType = "plan_completed"
	EventAffiliateStatusChanged OutboxEventType = "affiliate_status_changed"
	EventCommissionRecorded     OutboxEventType = "commission_recorded"
	EventPayoutProcessed        OutboxEventType = "payout_processed"
	EventUserBanned             OutboxEventType = "user_banned"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookSubmitted,
	EventBookStatusChanged,
	EventPlanPurchased,
	EventPlanAttached,
	EventPlanCompleted,
	EventAffiliateStatusChanged,
	EventCommissionRecorded,
	EventPayoutProcessed,
	EventUserBanned,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
