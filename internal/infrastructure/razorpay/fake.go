package razorpay

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Fake is a deterministic stand-in for the razorpay API, selected at startup
// when no gateway credentials are configured. It issues sequential order
// references and signs callbacks with the same HMAC scheme as the real
// gateway, so the verification path is identical either way.
type Fake struct {
	keyID     string
	keySecret string
	seq       atomic.Int64
}

func NewFake(keyID, keySecret string) *Fake {
	return &Fake{keyID: keyID, keySecret: keySecret}
}

func (f *Fake) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := f.seq.Add(1)
	return fmt.Sprintf("order_fake_%06d", n), nil
}

func (f *Fake) VerifySignature(orderRef, paymentRef, signature string) bool {
	return VerifySignature(f.keySecret, orderRef, paymentRef, signature)
}

// Sign produces a valid callback signature, used by tests and the local
// payment simulator.
func (f *Fake) Sign(orderRef, paymentRef string) string {
	return Sign(f.keySecret, orderRef, paymentRef)
}

func (f *Fake) KeyID() string { return f.keyID }
