package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"go.uber.org/zap"

	"appointment-booking/pkg/utils"
)

// StripeCheckout implements Checkout over Stripe PaymentIntents.
type StripeCheckout struct {
	log *zap.Logger
}

func NewStripeCheckout(config utils.StripeConfig, log *zap.Logger) *StripeCheckout {
	// stripe-go keys the package-level client; set once at construction.
	stripe.Key = config.SecretKey

	return &StripeCheckout{
		log: log.With(zap.String("component", "stripe")),
	}
}

func (s *StripeCheckout) PlaceOrder(ctx context.Context, order Order) (OrderRef, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(order.Amount)),
		Currency: stripe.String(order.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("member_id", order.MemberID.String())
	params.AddMetadata("appointment_plan_id", order.PlanID.String())
	params.AddMetadata("plan_title", order.PlanTitle)
	if order.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(order.IdempotencyKey)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		s.log.Error("Stripe payment intent create failed",
			zap.Error(err),
			zap.String("plan_id", order.PlanID.String()),
		)
		return OrderRef{}, fmt.Errorf("place order: %w", err)
	}

	s.log.Info("Order placed",
		zap.String("order_id", pi.ID),
		zap.String("plan_id", order.PlanID.String()),
		zap.Float64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)

	// One appointment per order, so the intent id doubles as the product key.
	return OrderRef{OrderID: pi.ID, OrderProductID: pi.ID}, nil
}

func (s *StripeCheckout) ConfirmPayment(ctx context.Context, orderID string) (Outcome, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(orderID, params)
	if err != nil {
		s.log.Error("Stripe payment intent fetch failed",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return Outcome{}, fmt.Errorf("confirm payment %s: %w", orderID, err)
	}

	return Outcome{
		Paid:   pi.Status == stripe.PaymentIntentStatusSucceeded,
		Status: string(pi.Status),
	}, nil
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
