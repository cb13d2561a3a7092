package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alma-labs/storefront/internal/application/auth"
	appcatalog "github.com/alma-labs/storefront/internal/application/catalog"
	"github.com/alma-labs/storefront/internal/application/checkout"
	"github.com/alma-labs/storefront/internal/domain/catalog"
	"github.com/alma-labs/storefront/internal/domain/user"
	"github.com/alma-labs/storefront/internal/infrastructure/httpapi"
	"github.com/alma-labs/storefront/internal/infrastructure/id"
	"github.com/alma-labs/storefront/internal/infrastructure/memory"
	"github.com/alma-labs/storefront/internal/infrastructure/razorpay"
	"github.com/alma-labs/storefront/internal/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	router   http.Handler
	gateway  *razorpay.Fake
	products *memory.ProductRepository
	users    *memory.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orders := memory.NewOrderRepository()
	products := memory.NewProductRepository()
	users := memory.NewUserRepository()
	gateway := razorpay.NewFake("rzp_test_key", "fake-secret")
	idGen := id.NewUUIDGenerator()

	require.NoError(t, products.Insert(context.Background(), &catalog.Product{
		ID: "P1", Name: "Midnight Rose", Price: 750, Stock: 5,
	}))
	require.NoError(t, products.Insert(context.Background(), &catalog.Product{
		ID: "P2", Name: "Ocean Breeze", Price: 500, Stock: 2,
	}))

	admin, err := user.New(idGen.NewID(), "Admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	admin.IsAdmin = true
	require.NoError(t, users.Insert(context.Background(), admin))

	checkoutSvc := checkout.NewService(
		orders, products, users,
		gateway, idGen, nil,
		metrics.NewNop(), "INR",
	)
	authSvc := auth.NewService(users, idGen, []byte("test-secret"), time.Hour)
	catalogSvc := appcatalog.NewService(products)

	h := httpapi.NewHandler(checkoutSvc, catalogSvc, authSvc, zap.NewNop(), metrics.NewNop(), false)
	return &fixture{
		router:   h.Router(),
		gateway:  gateway,
		products: products,
		users:    users,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func (f *fixture) register(t *testing.T, name, email string) *http.Cookie {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": "pw123456",
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return sessionCookie(t, rr)
}

func (f *fixture) loginAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@example.com", "password": "admin123",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return sessionCookie(t, rr)
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)

	cookie := f.register(t, "Alice", "alice@example.com")

	rr := f.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, false, me["isAdmin"])

	t.Run("no cookie is unauthorized", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/auth/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage cookie is unauthorized", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/auth/me", nil, &http.Cookie{Name: "token", Value: "garbage"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "alice@example.com", "password": "nope",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		var cleared bool
		for _, c := range rr.Result().Cookies() {
			if c.Name == "token" && c.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared)
	})
}

func TestProductEndpoints(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]map[string]any](t, rr)
	assert.Len(t, list, 2)

	rr = f.do(t, http.MethodGet, "/api/products/P1", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	p := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "Midnight Rose", p["name"])
	assert.Equal(t, float64(5), p["stock"])

	rr = f.do(t, http.MethodGet, "/api/products/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type checkoutResponse struct {
	OrderID         string `json:"orderId"`
	RazorpayOrderID string `json:"razorpayOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Key             string `json:"key"`
}

func (f *fixture) createCheckout(t *testing.T, cookie *http.Cookie) checkoutResponse {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/orders/razorpay", map[string]any{
		"items": []map[string]any{
			{"productId": "P1", "quantity": 2},
		},
	}, cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeBody[checkoutResponse](t, rr)
}

func TestCheckoutAndVerifyFlow(t *testing.T) {
	f := newFixture(t)
	cookie := f.register(t, "Alice", "alice@example.com")

	out := f.createCheckout(t, cookie)
	assert.NotEmpty(t, out.OrderID)
	assert.Equal(t, "order_fake_000001", out.RazorpayOrderID)
	assert.Equal(t, int64(150000), out.Amount)
	assert.Equal(t, "INR", out.Currency)
	assert.Equal(t, "rzp_test_key", out.Key)

	// Stock untouched until the payment is verified.
	p, err := f.products.FindByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	rr := f.do(t, http.MethodPost, "/api/orders/razorpay/verify", map[string]string{
		"razorpay_order_id":   out.RazorpayOrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  f.gateway.Sign(out.RazorpayOrderID, "pay_1"),
		"orderId":             out.OrderID,
	}, cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	verified := decodeBody[struct {
		Message string `json:"message"`
		Order   struct {
			Status            string `json:"status"`
			RazorpayPaymentID string `json:"razorpayPaymentId"`
		} `json:"order"`
	}](t, rr)
	assert.Equal(t, "payment verified successfully", verified.Message)
	assert.Equal(t, "paid", verified.Order.Status)
	assert.Equal(t, "pay_1", verified.Order.RazorpayPaymentID)

	p, err = f.products.FindByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)

	rr = f.do(t, http.MethodGet, "/api/orders/my", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	mine := decodeBody[[]map[string]any](t, rr)
	require.Len(t, mine, 1)
	assert.Equal(t, "paid", mine[0]["status"])
}

func TestCheckoutRejections(t *testing.T) {
	f := newFixture(t)
	cookie := f.register(t, "Alice", "alice@example.com")

	tests := []struct {
		name  string
		items []map[string]any
	}{
		{name: "empty cart", items: nil},
		{name: "unknown product", items: []map[string]any{{"productId": "nope", "quantity": 1}}},
		{name: "insufficient stock", items: []map[string]any{{"productId": "P2", "quantity": 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/orders/razorpay", map[string]any{"items": tt.items}, cookie)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/api/orders/razorpay", map[string]any{"items": nil}, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	f := newFixture(t)
	cookie := f.register(t, "Alice", "alice@example.com")
	out := f.createCheckout(t, cookie)

	rr := f.do(t, http.MethodPost, "/api/orders/razorpay/verify", map[string]string{
		"razorpay_order_id":   out.RazorpayOrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "deadbeef",
		"orderId":             out.OrderID,
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Stock untouched after a failed verification.
	p, err := f.products.FindByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestVerifyRejectsForeignOrder(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	out := f.createCheckout(t, alice)

	rr := f.do(t, http.MethodPost, "/api/orders/razorpay/verify", map[string]string{
		"razorpay_order_id":   out.RazorpayOrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  f.gateway.Sign(out.RazorpayOrderID, "pay_1"),
		"orderId":             out.OrderID,
	}, bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdminEndpoints(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "alice@example.com")
	admin := f.loginAdmin(t)

	out := f.createCheckout(t, alice)
	rr := f.do(t, http.MethodPost, "/api/orders/razorpay/verify", map[string]string{
		"razorpay_order_id":   out.RazorpayOrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  f.gateway.Sign(out.RazorpayOrderID, "pay_1"),
		"orderId":             out.OrderID,
	}, alice)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	t.Run("non-admin listing forbidden", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/orders", nil, alice)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin listing joins owner", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/orders", nil, admin)
		require.Equal(t, http.StatusOK, rr.Code)
		rows := decodeBody[[]struct {
			Status string `json:"status"`
			User   struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			} `json:"user"`
		}](t, rr)
		require.Len(t, rows, 1)
		assert.Equal(t, "paid", rows[0].Status)
		assert.Equal(t, "Alice", rows[0].User.Name)
		assert.Equal(t, "alice@example.com", rows[0].User.Email)
	})

	t.Run("non-admin status update forbidden", func(t *testing.T) {
		rr := f.do(t, http.MethodPut, "/api/orders/"+out.OrderID, map[string]string{"status": "processing"}, alice)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin advances one step at a time", func(t *testing.T) {
		rr := f.do(t, http.MethodPut, "/api/orders/"+out.OrderID, map[string]string{"status": "processing"}, admin)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		updated := decodeBody[map[string]any](t, rr)
		assert.Equal(t, "processing", updated["status"])

		rr = f.do(t, http.MethodPut, "/api/orders/"+out.OrderID, map[string]string{"status": "delivered"}, admin)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = f.do(t, http.MethodPut, "/api/orders/"+out.OrderID, map[string]string{"status": "paid"}, admin)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown order is 404", func(t *testing.T) {
		rr := f.do(t, http.MethodPut, "/api/orders/missing", map[string]string{"status": "processing"}, admin)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRequestIDEchoed(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
}
