package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alma-labs/storefront/internal/domain/cart"
	"github.com/alma-labs/storefront/internal/domain/catalog"
	"github.com/alma-labs/storefront/internal/domain/order"
	"github.com/alma-labs/storefront/internal/domain/outbox"
	"github.com/alma-labs/storefront/internal/domain/user"
	"github.com/alma-labs/storefront/internal/pkg/logging"
	"github.com/alma-labs/storefront/internal/pkg/metrics"
	"go.uber.org/zap"
)

// Service orchestrates the order/payment lifecycle: checkout creation,
// gateway payment verification, stock settlement, and status queries.
type Service struct {
	orders   order.Repository
	products catalog.Repository
	users    user.Repository

	gateway   Gateway
	idGen     IDGenerator
	publisher outbox.Publisher
	metrics   *metrics.Metrics
	currency  string
}

func NewService(
	orders order.Repository,
	products catalog.Repository,
	users user.Repository,
	gateway Gateway,
	idGen IDGenerator,
	publisher outbox.Publisher,
	m *metrics.Metrics,
	currency string,
) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		orders:    orders,
		products:  products,
		users:     users,
		gateway:   gateway,
		idGen:     idGen,
		publisher: publisher,
		metrics:   m,
		currency:  currency,
	}
}

type CheckoutResult struct {
	OrderID        string
	GatewayOrderID string
	Amount         int64
	Currency       string
	GatewayKeyID   string
}

// CreateCheckoutOrder validates the cart against current stock, persists a
// pending order with immutable line-item snapshots, and registers a payment
// intent with the gateway. Stock is only checked here, not reserved;
// settlement happens at verification.
func (s *Service) CreateCheckoutOrder(ctx context.Context, userID string, lines []cart.Line) (_ *CheckoutResult, err error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "checkout_service"))
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		s.metrics.Checkouts.WithLabelValues(outcome).Inc()
	}()

	lines = cart.Normalize(lines)
	if len(lines) == 0 {
		return nil, order.ErrNoItems
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checkout: resolve products: %w", err)
	}
	byID := make(map[string]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]order.LineItem, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, ErrUnknownProduct
		}
		// Advisory check only; the conditional decrement at verification
		// time is what actually guards stock.
		if p.Stock < l.Quantity {
			return nil, &InsufficientStockError{ProductName: p.Name}
		}
		items = append(items, order.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
			Image:     p.Image,
		})
	}

	entity, err := order.New(s.idGen.NewID(), userID, items)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Insert(ctx, entity); err != nil {
		logger.Error("order_insert_failed", zap.String("order_id", entity.ID), zap.Error(err))
		return nil, fmt.Errorf("checkout: save order: %w", err)
	}

	amount := minorUnits(entity.TotalPrice)
	gatewayStart := time.Now()
	gatewayRef, err := s.gateway.CreateOrder(ctx, amount, s.currency, entity.ID, map[string]string{
		"order_id": entity.ID,
		"user_id":  userID,
	})
	gatewayOutcome := "success"
	if err != nil {
		gatewayOutcome = "error"
	}
	s.metrics.GatewayRequests.WithLabelValues(gatewayOutcome).Inc()
	s.metrics.GatewayDuration.WithLabelValues(gatewayOutcome).Observe(time.Since(gatewayStart).Seconds())
	if err != nil {
		// The pending order stays behind without a gateway ref; no cleanup
		// job exists yet, so make the orphan visible.
		logger.Warn("gateway_create_failed_orphan_order",
			zap.String("order_id", entity.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("checkout: create gateway order: %w", err)
	}

	if err := entity.AttachGatewayOrder(gatewayRef); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		logger.Error("order_update_failed", zap.String("order_id", entity.ID), zap.Error(err))
		return nil, fmt.Errorf("checkout: attach gateway ref: %w", err)
	}

	s.publish(ctx, order.NewCreatedEvent(entity))
	logger.Info("checkout_order_created",
		zap.String("order_id", entity.ID),
		zap.String("gateway_order_id", gatewayRef),
		zap.Int64("amount", amount),
	)

	return &CheckoutResult{
		OrderID:        entity.ID,
		GatewayOrderID: gatewayRef,
		Amount:         amount,
		Currency:       s.currency,
		GatewayKeyID:   s.gateway.KeyID(),
	}, nil
}

type VerifyPaymentInput struct {
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// VerifyPayment authenticates a gateway callback and settles the order:
// signature check, already-paid guard, conditional stock decrement, then the
// paid transition. A second call for the same order is rejected before any
// stock mutation, so stock settles exactly once.
func (s *Service) VerifyPayment(ctx context.Context, userID string, in VerifyPaymentInput) (_ *order.Order, err error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "checkout_service"))
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		s.metrics.Verifications.WithLabelValues(outcome).Inc()
	}()

	if in.OrderID == "" || in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.Signature == "" {
		return nil, ErrMissingPaymentData
	}

	entity, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if entity.UserID != userID {
		return nil, ErrForbidden
	}
	if entity.Status != order.StatusPending {
		return nil, order.ErrAlreadyPaid
	}
	// A valid signature for some other checkout must not pay this order.
	if entity.RazorpayOrderID != in.GatewayOrderID {
		return nil, ErrOrderMismatch
	}
	if !s.gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature) {
		logger.Warn("payment_signature_rejected", zap.String("order_id", entity.ID))
		return nil, ErrInvalidSignature
	}

	if err := s.settleStock(ctx, entity); err != nil {
		return nil, err
	}

	if err := entity.MarkPaid(in.GatewayPaymentID, in.Signature); err != nil {
		s.releaseStock(ctx, entity, len(entity.Items))
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		// A racing writer won; give the stock back rather than leak it.
		s.releaseStock(ctx, entity, len(entity.Items))
		logger.Error("order_update_failed", zap.String("order_id", entity.ID), zap.Error(err))
		if errors.Is(err, order.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("checkout: persist paid order: %w", err)
	}

	s.metrics.OrdersPaid.Inc()
	s.publish(ctx, order.NewPaidEvent(entity))
	logger.Info("payment_verified",
		zap.String("order_id", entity.ID),
		zap.String("gateway_payment_id", in.GatewayPaymentID),
	)
	return entity, nil
}

// settleStock conditionally decrements every line item. On the first
// failure, already-settled lines are compensated and the order is left
// untouched in pending.
func (s *Service) settleStock(ctx context.Context, entity *order.Order) error {
	for i, it := range entity.Items {
		if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.releaseStock(ctx, entity, i)
			if errors.Is(err, catalog.ErrInsufficientStock) {
				return &InsufficientStockError{ProductName: it.Name}
			}
			return fmt.Errorf("checkout: settle stock: %w", err)
		}
	}
	return nil
}

// releaseStock restores the first n settled line items.
func (s *Service) releaseStock(ctx context.Context, entity *order.Order, n int) {
	logger := logging.FromContext(ctx)
	for _, it := range entity.Items[:n] {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			logger.Error("stock_release_failed",
				zap.String("order_id", entity.ID),
				zap.String("product_id", it.ProductID),
				zap.Error(err),
			)
		}
	}
}

// ListMyOrders returns the caller's orders, newest first.
func (s *Service) ListMyOrders(ctx context.Context, userID string) ([]*order.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// OrderWithUser joins the owning account's name and email onto an order for
// the admin listing.
type OrderWithUser struct {
	*order.Order
	UserName  string
	UserEmail string
}

// ListAllOrders returns every order, newest first, with user identity
// populated. Authorization is the caller's responsibility.
func (s *Service) ListAllOrders(ctx context.Context) ([]OrderWithUser, error) {
	all, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, o := range all {
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		ids = append(ids, o.UserID)
	}
	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checkout: resolve order owners: %w", err)
	}

	out := make([]OrderWithUser, 0, len(all))
	for _, o := range all {
		row := OrderWithUser{Order: o}
		if u, ok := owners[o.UserID]; ok {
			row.UserName = u.Name
			row.UserEmail = u.Email
		}
		out = append(out, row)
	}
	return out, nil
}

// UpdateStatus applies an administrative status change, holding the
// forward-only transition chain.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next order.Status, callerIsAdmin bool) (*order.Order, error) {
	if !callerIsAdmin {
		return nil, ErrForbidden
	}

	entity, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := entity.Advance(next); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("order_status_updated",
		zap.String("order_id", entity.ID),
		zap.String("status", string(entity.Status)),
	)
	return entity, nil
}

func (s *Service) publish(ctx context.Context, e outbox.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
	}
}

// minorUnits converts a price in major units to the smallest currency
// subunit, rounded to the nearest integer.
func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
