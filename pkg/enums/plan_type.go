package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PlanType is a purchasable review plan tier with a fixed price and capacity.
type PlanType string

const (
	PlanTypeStarter PlanType = "starter"
	PlanTypeBronze  PlanType = "bronze"
	PlanTypeSilver  PlanType = "silver"
	PlanTypeGold    PlanType = "gold"
)

var validPlanTypes = []PlanType{
	PlanTypeStarter,
	PlanTypeBronze,
	PlanTypeSilver,
	PlanTypeGold,
}

var planTypePrices = map[PlanType]decimal.Decimal{
	PlanTypeStarter: decimal.NewFromInt(49),
	PlanTypeBronze:  decimal.NewFromInt(99),
	PlanTypeSilver:  decimal.NewFromInt(179),
	PlanTypeGold:    decimal.NewFromInt(299),
}

var planTypeCapacities = map[PlanType]int{
	PlanTypeStarter: 10,
	PlanTypeBronze:  25,
	PlanTypeSilver:  50,
	PlanTypeGold:    100,
}

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanType.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// Price returns the fixed purchase price for the tier.
func (p PlanType) Price() decimal.Decimal {
	return planTypePrices[p]
}

// ReviewCapacity returns the number of reviews included in the tier.
func (p PlanType) ReviewCapacity() int {
	return planTypeCapacities[p]
}

// ParsePlanType converts raw input into a PlanType.
func ParsePlanType(value string) (PlanType, error) {
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}
