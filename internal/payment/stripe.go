package payment

import (
	"context"
	"log"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider implements Provider against the Stripe API.  Each
// call is bounded by Timeout; verification retries transient errors
// up to Retries times with a short backoff and reports pending when
// the outcome could not be established, so a network blip can never
// be mistaken for a captured payment.
type StripeProvider struct {
	api     *client.API
	timeout time.Duration
	retries int
}

// NewStripeProvider builds a StripeProvider from a secret key.
func NewStripeProvider(secretKey string, timeout time.Duration, retries int) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if retries < 1 {
		retries = 1
	}
	return &StripeProvider{api: api, timeout: timeout, retries: retries}
}

// CreateIntent registers a PaymentIntent with Stripe.
func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &Intent{
		Ref:          pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// Verify fetches a PaymentIntent and maps its state onto Status.
// Transient fetch failures are retried; if the intent still cannot
// be fetched the attempt is reported pending rather than failed so
// the caller can reconcile later.
func (p *StripeProvider) Verify(ctx context.Context, ref string) (*Verification, error) {
	var pi *stripe.PaymentIntent
	var err error
	for attempt := 1; attempt <= p.retries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		params := &stripe.PaymentIntentParams{}
		params.Context = callCtx
		pi, err = p.api.PaymentIntents.Get(ref, params)
		cancel()
		if err == nil {
			break
		}
		log.Printf("stripe verify attempt %d for %s failed: %v", attempt, ref, err)
		if attempt < p.retries {
			select {
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			case <-ctx.Done():
				return pendingVerification(), nil
			}
		}
	}
	if err != nil {
		return pendingVerification(), nil
	}

	v := &Verification{
		AmountCents: pi.Amount,
		Currency:    string(pi.Currency),
		Metadata:    pi.Metadata,
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		v.Status = StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		v.Status = StatusFailed
	default:
		v.Status = StatusPending
	}
	return v, nil
}

func pendingVerification() *Verification {
	return &Verification{Status: StatusPending}
}
