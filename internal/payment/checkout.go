package payment

import (
	"context"

	"github.com/google/uuid"
)

// Order describes one appointment purchase handed to the checkout
// collaborator.
type Order struct {
	MemberID  uuid.UUID
	PlanID    uuid.UUID
	PlanTitle string
	Amount    float64
	Currency  string
	// IdempotencyKey dedupes retried submissions of the same booking attempt.
	IdempotencyKey string
}

// OrderRef identifies a placed order. OrderProductID is the durable key the
// enrollment is bound to; reconciliation after a partial commit is keyed on
// it.
type OrderRef struct {
	OrderID        string
	OrderProductID string
}

// Outcome is the result of confirming payment for a placed order.
type Outcome struct {
	Paid   bool
	Status string
}

// Checkout is the external payment collaborator. Failures propagate as
// booking failures; nothing here is retried automatically.
type Checkout interface {
	PlaceOrder(ctx context.Context, order Order) (OrderRef, error)
	ConfirmPayment(ctx context.Context, orderID string) (Outcome, error)
}
