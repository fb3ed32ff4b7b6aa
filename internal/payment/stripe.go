package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// ErrUnknownPlan marks a checkout request for a plan that cannot be purchased.
var ErrUnknownPlan = errors.New("payment: unknown plan")

// CheckoutSession is the hosted payment page handed back to the frontend.
type CheckoutSession struct {
	ID          string
	RedirectURL string
	IntentID    string
}

// CheckoutProvider creates hosted checkout sessions for plan purchases.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, userID string, offer PlanOffer) (CheckoutSession, error)
}

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProvider implements CheckoutProvider using Stripe Checkout.
type StripeProvider struct {
	sessions stripeSessionAPI
	baseURL  string
}

// NewStripeProvider constructs a provider. baseURL is where Stripe redirects
// the customer after payment, e.g. https://postir.sa.
func NewStripeProvider(apiKey, baseURL string) (*StripeProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("payment: stripe api key is required")
	}
	sc := client.New(apiKey, nil)
	return &StripeProvider{
		sessions: sc.CheckoutSessions,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// CreateCheckout opens a Stripe Checkout session for the offer. Amounts are
// integer SAR so the unit amount is halalas (x100).
func (p *StripeProvider) CreateCheckout(ctx context.Context, userID string, offer PlanOffer) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.baseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.baseURL + "/payment/cancel"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("sar"),
					UnitAmount: stripe.Int64(offer.AmountSAR * 100),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(offer.NameEN),
						Description: stripe.String(offer.Description),
					},
				},
			},
		},
		Metadata: map[string]string{
			"user_id": userID,
			"plan":    offer.Plan,
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(fmt.Sprintf("checkout-%s-%s", userID, offer.Plan))

	session, err := p.sessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("payment: create checkout session: %w", err)
	}

	intentID := ""
	if session.PaymentIntent != nil {
		intentID = session.PaymentIntent.ID
	}

	return CheckoutSession{
		ID:          session.ID,
		RedirectURL: session.URL,
		IntentID:    intentID,
	}, nil
}
