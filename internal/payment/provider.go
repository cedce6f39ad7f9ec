// Package payment abstracts the external payment gateway behind a
// small Provider interface so the service layer never talks to the
// gateway SDK directly.  The concrete Stripe implementation lives in
// stripe.go; tests substitute an in-memory provider.
package payment

import "context"

// Status is the provider-side state of a payment attempt as seen at
// verification time.
type Status string

const (
	// StatusSucceeded means the provider captured the funds.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the provider terminally rejected the payment.
	StatusFailed Status = "failed"
	// StatusPending means the outcome is not yet known.  Timeouts and
	// transient verification failures map here, never to succeeded.
	StatusPending Status = "pending"
)

// Intent is a provider-side payment that the client completes.  The
// ClientSecret is handed to the frontend; the Ref identifies the
// intent for later server-side verification.
type Intent struct {
	Ref          string
	ClientSecret string
	AmountCents  int64
	Currency     string
}

// Verification is the server-side view of a payment attempt fetched
// directly from the provider.  Client-reported outcomes are never
// trusted; confirmation always goes through Verify.
type Verification struct {
	Status      Status
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

// Provider is the payment gateway surface the marketplace depends on.
type Provider interface {
	// CreateIntent registers a payment of amountCents in the given
	// currency with the provider and returns the created intent.
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	// Verify fetches the authoritative state of a payment by its
	// provider reference.
	Verify(ctx context.Context, ref string) (*Verification, error)
}
