package enums

import (
	"fmt"

	"github.com/samber/lo"
)

// PaymentStatus tracks the lifecycle of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "created"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// paymentTransitions maps each status to the statuses it may move to.
// Rewriting the current status is always allowed and not listed here.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusCreated:   {PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusPending:   {PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusSucceeded: nil,
	PaymentStatusFailed:    nil,
	PaymentStatusCancelled: nil,
}

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[p]
	return ok
}

// IsTerminal reports whether no further provider updates are expected.
func (p PaymentStatus) IsTerminal() bool {
	next, ok := paymentTransitions[p]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether an attempt in status p may move to next.
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if !p.IsValid() || !next.IsValid() {
		return false
	}
	return p == next || lo.Contains(paymentTransitions[p], next)
}

// PaymentStatusesAllowingTransitionTo lists the statuses that may move to
// next, for guarding conditional updates in SQL.
func PaymentStatusesAllowingTransitionTo(next PaymentStatus) []PaymentStatus {
	sources := lo.Filter(lo.Keys(paymentTransitions), func(from PaymentStatus, _ int) bool {
		return from.CanTransitionTo(next)
	})
	return sortedStatuses(sources)
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	if status := PaymentStatus(value); status.IsValid() {
		return status, nil
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// sortedStatuses orders by lifecycle so generated SQL is stable.
func sortedStatuses(in []PaymentStatus) []PaymentStatus {
	order := []PaymentStatus{PaymentStatusCreated, PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled}
	return lo.Filter(order, func(s PaymentStatus, _ int) bool { return lo.Contains(in, s) })
}
