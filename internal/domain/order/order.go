package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("order: not found")
	ErrConflict           = errors.New("order: version conflict")
	ErrNoItems            = errors.New("order: at least one item is required")
	ErrInvalidQuantity    = errors.New("order: quantity must be greater than zero")
	ErrAlreadyPaid        = errors.New("order: already paid")
	ErrGatewayRefAttached = errors.New("order: gateway reference already attached")
	ErrInvalidStatus      = errors.New("order: unknown status")
	ErrInvalidTransition  = errors.New("order: invalid status transition")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// statusRank orders the lifecycle chain. Transitions never decrease rank.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusPaid:       1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether an administrative update may move the order
// from s to next. Only single forward steps past "paid" are allowed; the
// pending→paid edge is reserved for payment verification.
func (s Status) CanAdvanceTo(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return from >= statusRank[StatusPaid] && to == from+1
}

// LineItem is an immutable snapshot of a product at order-creation time, so
// later catalog edits do not change historical orders.
type LineItem struct {
	ProductID string
	Name      string
	UnitPrice float64
	Quantity  int
	Image     string
}

type Order struct {
	ID                string
	UserID            string
	Items             []LineItem
	TotalPrice        float64
	Status            Status
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// New builds a pending order from line-item snapshots. The total is computed
// once here and never recomputed on the stored order.
func New(id, userID string, items []LineItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	var total float64
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		total += it.UnitPrice * float64(it.Quantity)
	}

	now := time.Now().UTC()
	return &Order{
		ID:         id,
		UserID:     userID,
		Items:      append([]LineItem(nil), items...),
		TotalPrice: total,
		Status:     StatusPending,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AttachGatewayOrder records the payment gateway's order reference. It is
// set exactly once, right after checkout creation.
func (o *Order) AttachGatewayOrder(ref string) error {
	if o.RazorpayOrderID != "" {
		return ErrGatewayRefAttached
	}
	o.RazorpayOrderID = ref
	o.touch()
	return nil
}

// MarkPaid transitions pending→paid and records the payment correlation
// fields. Payment refs exist if and only if the order is paid or later.
func (o *Order) MarkPaid(paymentID, signature string) error {
	if o.Status != StatusPending {
		return ErrAlreadyPaid
	}
	o.Status = StatusPaid
	o.RazorpayPaymentID = paymentID
	o.RazorpaySignature = signature
	o.touch()
	return nil
}

// Advance applies an administrative status update, enforcing the forward-only
// chain paid→processing→shipped→delivered.
func (o *Order) Advance(next Status) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if !o.Status.CanAdvanceTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	o.touch()
	return nil
}

// Total recomputes the line-item sum, used to assert the stored total.
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
