package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"wedding-guests/internal/domain"
	"wedding-guests/internal/observability/metrics"
	obsmw "wedding-guests/internal/observability/middleware"
	"wedding-guests/internal/service"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*service.AdminClaims, error)
}

// RejectFunc writes the 401 for a rejected request. err is
// domain.ErrMissingCredential or domain.ErrInvalidCredential.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

type Guard struct {
	verifier TokenVerifier
	reject   RejectFunc
}

func NewGuard(v TokenVerifier, reject RejectFunc) *Guard {
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return &Guard{verifier: v, reject: reject}
}

// Require lets a request through only with a valid admin bearer token.
// Without an Authorization header the verifier is never called.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearerToken(r)
		if !ok {
			g.fail(w, r, domain.ErrMissingCredential)
			return
		}
		g.verify(next, w, r, tok)
	})
}

// Optional admits anonymous requests but still rejects a bad token, so a
// caller that sends credentials always gets them checked.
func (g *Guard) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		tok, ok := bearerToken(r)
		if !ok {
			g.fail(w, r, domain.ErrInvalidCredential)
			return
		}
		g.verify(next, w, r, tok)
	})
}

func (g *Guard) verify(next http.Handler, w http.ResponseWriter, r *http.Request, tok string) {
	claims, err := g.verifier.Verify(r.Context(), tok)
	if err != nil {
		g.fail(w, r, domain.ErrInvalidCredential)
		return
	}

	metrics.AuthenticationAttemptsTotal.WithLabelValues("success").Inc()
	slog.Info("admin auth passed",
		"subject", claims.Subject,
		"request_id", obsmw.RequestIDFromContext(r.Context()),
		"trace_id", obsmw.TraceIDFromContext(r.Context()),
	)
	next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
}

func (g *Guard) fail(w http.ResponseWriter, r *http.Request, err error) {
	metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
	slog.Warn("admin auth rejected",
		"reason", err.Error(),
		"path", r.URL.Path,
		"request_id", obsmw.RequestIDFromContext(r.Context()),
		"trace_id", obsmw.TraceIDFromContext(r.Context()),
	)
	g.reject(w, r, err)
}

func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) < len("bearer ") || !strings.EqualFold(raw[:len("bearer ")], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(raw[len("bearer "):])
	return tok, tok != ""
}

type claimsKey struct{}

func contextWithClaims(ctx context.Context, c *service.AdminClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the admin claims attached by the guard, if any.
func ClaimsFrom(ctx context.Context) (*service.AdminClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*service.AdminClaims)
	return c, ok && c != nil
}
