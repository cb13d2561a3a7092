package checkout

import "context"

type IDGenerator interface {
	NewID() string
}

// Gateway is the payment processor capability. Two implementations exist
// (real razorpay client and a deterministic fake); which one runs is decided
// by wiring at startup, never by branching in here.
type Gateway interface {
	// CreateOrder registers a payment intent for amount in minor currency
	// units and returns the gateway's order reference.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error)
	// VerifySignature checks a payment callback signature in constant time.
	VerifySignature(orderRef, paymentRef, signature string) bool
	// KeyID is the public key identifier handed to browser checkout.
	KeyID() string
}
