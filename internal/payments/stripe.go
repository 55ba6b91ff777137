package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"evenza/internal/config"
	"evenza/internal/models"
)

// CheckoutLinker produces a hosted payment URL for a pending payment.
type CheckoutLinker interface {
	CheckoutLink(payment models.Payment, description string) (string, error)
}

// StripeCheckout implements CheckoutLinker against Stripe Checkout
// Sessions. Construct it only when a secret key is configured.
type StripeCheckout struct {
	cfg config.StripeConfig
}

func NewStripeCheckout(cfg config.StripeConfig) *StripeCheckout {
	stripe.Key = cfg.SecretKey
	return &StripeCheckout{cfg: cfg}
}

func (s *StripeCheckout) CheckoutLink(payment models.Payment, description string) (string, error) {
	amountInCents := int64(payment.Amount * 100)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amountInCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.AddMetadata("payment_id", payment.ID)
	params.AddMetadata("entity_id", payment.EntityID)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}
