package order

import (
	"strings"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCompleted},
}

// Valid reports whether s is a stored status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// ParseStatus normalizes s into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", apperrors.WithMetadata(apperrors.CodeOrderInvalidStatus, "unknown order status",
			map[string]string{"status": s})
	}
	return status, nil
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentMethod is how a paid order was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// ErrInvalidPaymentMethod indicates a missing or unknown payment method.
var ErrInvalidPaymentMethod = apperrors.New(apperrors.CodeOrderInvalidPaymentMethod, "payment method must be cash, card, or transfer")

// Valid reports whether m is a stored payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	default:
		return false
	}
}

// ParsePaymentMethod normalizes s into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !method.Valid() {
		return "", ErrInvalidPaymentMethod
	}
	return method, nil
}
