package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appauth "github.com/alma-labs/storefront/internal/application/auth"
	appcatalog "github.com/alma-labs/storefront/internal/application/catalog"
	"github.com/alma-labs/storefront/internal/application/checkout"
	"github.com/alma-labs/storefront/internal/domain/cart"
	domaincatalog "github.com/alma-labs/storefront/internal/domain/catalog"
	domainorder "github.com/alma-labs/storefront/internal/domain/order"
	domainuser "github.com/alma-labs/storefront/internal/domain/user"
	"github.com/alma-labs/storefront/internal/pkg/logging"
	"github.com/alma-labs/storefront/internal/pkg/metrics"
	"go.uber.org/zap"
)

type Handler struct {
	checkout *checkout.Service
	catalog  *appcatalog.Service
	auth     *appauth.Service

	log           *zap.Logger
	metrics       *metrics.Metrics
	secureCookies bool
}

func NewHandler(
	checkoutSvc *checkout.Service,
	catalogSvc *appcatalog.Service,
	authSvc *appauth.Service,
	logger *zap.Logger,
	m *metrics.Metrics,
	secureCookies bool,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Handler{
		checkout:      checkoutSvc,
		catalog:       catalogSvc,
		auth:          authSvc,
		log:           logger.With(zap.String("component", "http_server")),
		metrics:       m,
		secureCookies: secureCookies,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", h.observe("/api/auth/register", h.handleRegister))
	mux.HandleFunc("POST /api/auth/login", h.observe("/api/auth/login", h.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", h.observe("/api/auth/logout", h.handleLogout))
	mux.HandleFunc("GET /api/auth/me", h.observe("/api/auth/me", h.requireAuth(h.handleMe)))

	mux.HandleFunc("GET /api/products", h.observe("/api/products", h.handleListProducts))
	mux.HandleFunc("GET /api/products/{id}", h.observe("/api/products/{id}", h.handleGetProduct))

	mux.HandleFunc("POST /api/orders/razorpay", h.observe("/api/orders/razorpay", h.requireAuth(h.handleCreateCheckout)))
	mux.HandleFunc("POST /api/orders/razorpay/verify", h.observe("/api/orders/razorpay/verify", h.requireAuth(h.handleVerifyPayment)))
	mux.HandleFunc("GET /api/orders/my", h.observe("/api/orders/my", h.requireAuth(h.handleMyOrders)))
	mux.HandleFunc("GET /api/orders", h.observe("/api/orders", h.requireAdmin(h.handleAllOrders)))
	mux.HandleFunc("PUT /api/orders/{id}", h.observe("/api/orders/{id}", h.requireAdmin(h.handleUpdateOrderStatus)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, toUserResponse(account))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, toUserResponse(account))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	account, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUserResponse(account))
}

type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type checkoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createCheckoutRequest struct {
	Items []checkoutItem `json:"items"`
}

type createCheckoutResponse struct {
	OrderID         string `json:"orderId"`
	RazorpayOrderID string `json:"razorpayOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Key             string `json:"key"`
}

func (h *Handler) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	account, _ := userFromContext(r.Context())

	var req createCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lines := make([]cart.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, cart.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	result, err := h.checkout.CreateCheckoutOrder(r.Context(), account.ID, lines)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createCheckoutResponse{
		OrderID:         result.OrderID,
		RazorpayOrderID: result.GatewayOrderID,
		Amount:          result.Amount,
		Currency:        result.Currency,
		Key:             result.GatewayKeyID,
	})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"orderId"`
}

type verifyPaymentResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

func (h *Handler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	account, _ := userFromContext(r.Context())

	var req verifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.checkout.VerifyPayment(r.Context(), account.ID, checkout.VerifyPaymentInput{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyPaymentResponse{
		Message: "payment verified successfully",
		Order:   toOrderResponse(updated),
	})
}

func (h *Handler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	account, _ := userFromContext(r.Context())

	orders, err := h.checkout.ListMyOrders(r.Context(), account.ID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

type adminOrderResponse struct {
	orderResponse
	User struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (h *Handler) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.checkout.ListAllOrders(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out := make([]adminOrderResponse, 0, len(rows))
	for _, row := range rows {
		item := adminOrderResponse{orderResponse: toOrderResponse(row.Order)}
		item.User.Name = row.UserName
		item.User.Email = row.UserEmail
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	account, _ := userFromContext(r.Context())

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.checkout.UpdateStatus(r.Context(), r.PathValue("id"), domainorder.Status(req.Status), account.IsAdmin)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

type orderResponse struct {
	ID                string              `json:"id"`
	UserID            string              `json:"userId"`
	Items             []orderItemResponse `json:"items"`
	TotalPrice        float64             `json:"totalPrice"`
	Status            string              `json:"status"`
	RazorpayOrderID   string              `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string              `json:"razorpayPaymentId,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
}

func toOrderResponse(o *domainorder.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return orderResponse{
		ID:                o.ID,
		UserID:            o.UserID,
		Items:             items,
		TotalPrice:        o.TotalPrice,
		Status:            string(o.Status),
		RazorpayOrderID:   o.RazorpayOrderID,
		RazorpayPaymentID: o.RazorpayPaymentID,
		CreatedAt:         o.CreatedAt,
	}
}

func toUserResponse(u *domainuser.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}

func toProductResponse(p *domaincatalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       p.Image,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domainorder.ErrNotFound),
		errors.Is(err, domaincatalog.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, checkout.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domainorder.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domainorder.ErrNoItems),
		errors.Is(err, domainorder.ErrInvalidQuantity),
		errors.Is(err, domainorder.ErrInvalidStatus),
		errors.Is(err, domainorder.ErrInvalidTransition),
		errors.Is(err, domainorder.ErrAlreadyPaid),
		errors.Is(err, domaincatalog.ErrInsufficientStock),
		errors.Is(err, domaincatalog.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrMissingPaymentData),
		errors.Is(err, checkout.ErrUnknownProduct),
		errors.Is(err, checkout.ErrOrderMismatch),
		errors.Is(err, checkout.ErrInvalidSignature),
		errors.Is(err, appauth.ErrMissingFields),
		errors.Is(err, appauth.ErrInvalidCredentials),
		errors.Is(err, domainuser.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(r.Context()).Error("request_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
