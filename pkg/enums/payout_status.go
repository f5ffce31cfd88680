package enums

import "fmt"

// PayoutStatus tracks the reconciliation state of an order's payout.
// Transitions only move forward: pending -> in_progress -> paid.
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusInProgress PayoutStatus = "in_progress"
	PayoutStatusPaid       PayoutStatus = "paid"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusPending,
	PayoutStatusInProgress,
	PayoutStatusPaid,
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

// CanAdvanceTo reports whether target is the immediate next state.
func (p PayoutStatus) CanAdvanceTo(target PayoutStatus) bool {
	switch p {
	case PayoutStatusPending:
		return target == PayoutStatusInProgress
	case PayoutStatusInProgress:
		return target == PayoutStatusPaid
	default:
		return false
	}
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
