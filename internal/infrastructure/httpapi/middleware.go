package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	domainuser "github.com/alma-labs/storefront/internal/domain/user"
	"github.com/alma-labs/storefront/internal/pkg/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	sessionCookie   = "token"
	headerRequestID = "X-Request-ID"
)

type userCtxKey struct{}

func contextWithUser(ctx context.Context, u *domainuser.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func userFromContext(ctx context.Context) (*domainuser.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*domainuser.User)
	return u, ok && u != nil
}

// observe wraps a route handler with:
// - W3C trace context extraction
// - X-Request-ID generation + echo
// - request-scoped logger injection
// - HTTP metrics with the low-cardinality route label
func (h *Handler) observe(route string, next http.HandlerFunc) http.HandlerFunc {
	prop := otel.GetTextMapPropagator() // W3C by default

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		sc := trace.SpanContextFromContext(ctx)

		rid := r.Header.Get(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(headerRequestID, rid)

		fields := []zap.Field{zap.String("request_id", rid)}
		if sc.IsValid() {
			fields = append(fields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
		reqLogger := h.log.With(fields...)
		ctx = logging.ContextWithLogger(ctx, reqLogger)

		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r.WithContext(ctx))

		statusLabel := strconv.Itoa(lrw.status)
		h.metrics.HTTPRequests.WithLabelValues(r.Method, route, statusLabel).Inc()
		h.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())

		reqLogger.Info("http_request_done",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", lrw.status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// requireAuth resolves the caller from the session cookie before the handler
// runs; unauthenticated requests stop here with a 401.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		account, err := h.auth.ResolveToken(r.Context(), cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), account)))
	}
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		account, _ := userFromContext(r.Context())
		if account == nil || !account.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.TokenTTL() / time.Second),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
