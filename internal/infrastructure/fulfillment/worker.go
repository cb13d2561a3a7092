// Package fulfillment consumes paid-order events. Actual shipment handoff is
// outside this service; the worker records fulfillment intent so operators
// can see the queue forming.
package fulfillment

import (
	"context"

	domorder "github.com/alma-labs/storefront/internal/domain/order"
	domoutbox "github.com/alma-labs/storefront/internal/domain/outbox"
	"github.com/alma-labs/storefront/internal/pkg/metrics"
	"go.uber.org/zap"
)

type Worker struct {
	subscriber domoutbox.Subscriber
	log        *zap.Logger
	metrics    *metrics.Metrics
}

func New(subscriber domoutbox.Subscriber, logger *zap.Logger, m *metrics.Metrics) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Worker{
		subscriber: subscriber,
		log:        logger.With(zap.String("component", "fulfillment_worker")),
		metrics:    m,
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domorder.CreatedEvent{}.EventName(), w.handleOrderCreated)
	w.subscriber.Subscribe(domorder.PaidEvent{}.EventName(), w.handleOrderPaid)
}

func (w *Worker) handleOrderCreated(ctx context.Context, e domoutbox.Event) error {
	_ = ctx
	evt, ok := e.(domorder.CreatedEvent)
	if !ok {
		return nil
	}
	w.log.Info("order_awaiting_payment",
		zap.String("order_id", evt.OrderID),
		zap.String("gateway_order_ref", evt.GatewayOrderRef),
	)
	return nil
}

func (w *Worker) handleOrderPaid(ctx context.Context, e domoutbox.Event) error {
	_ = ctx
	evt, ok := e.(domorder.PaidEvent)
	if !ok {
		return nil
	}
	w.metrics.FulfillmentJobs.Inc()
	w.log.Info("order_ready_for_fulfillment",
		zap.String("order_id", evt.OrderID),
		zap.String("gateway_payment_id", evt.GatewayPaymentID),
		zap.Float64("total_price", evt.TotalPrice),
	)
	return nil
}
