package order

import "time"

// CreatedEvent is emitted after a checkout order has been persisted and its
// gateway reference attached.
type CreatedEvent struct {
	OrderID         string
	UserID          string
	GatewayOrderRef string
	TotalPrice      float64
	OccurredAt      time.Time
}

func (CreatedEvent) EventName() string { return "order.created" }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:         o.ID,
		UserID:          o.UserID,
		GatewayOrderRef: o.RazorpayOrderID,
		TotalPrice:      o.TotalPrice,
		OccurredAt:      time.Now().UTC(),
	}
}

// PaidEvent is emitted once payment verification succeeds and stock has been
// settled. Downstream consumers (fulfillment) key off this.
type PaidEvent struct {
	OrderID          string
	UserID           string
	GatewayPaymentID string
	TotalPrice       float64
	OccurredAt       time.Time
}

func (PaidEvent) EventName() string { return "order.paid" }

func NewPaidEvent(o *Order) PaidEvent {
	return PaidEvent{
		OrderID:          o.ID,
		UserID:           o.UserID,
		GatewayPaymentID: o.RazorpayPaymentID,
		TotalPrice:       o.TotalPrice,
		OccurredAt:       time.Now().UTC(),
	}
}
