package impl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"wedding-guests/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokenService(key string, ttl time.Duration) *TokenServiceImpl {
	return NewTokenServiceHS256(TokenConfig{
		Issuer:     "wedding-guests-test",
		Audience:   "admin",
		AccessTTL:  ttl,
		SigningKey: []byte(key),
	})
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenService("test-secret", time.Hour)

	tr, err := ts.Issue(ctx, "ops")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tr.AccessToken == "" || tr.TokenType != "Bearer" || tr.ExpiresIn != 3600 {
		t.Fatalf("unexpected token response: %+v", tr)
	}

	claims, err := ts.Verify(ctx, tr.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != RoleAdmin || claims.TokenID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenService("test-secret", time.Minute)
	issuedAt := time.Now().UTC().Add(-2 * time.Hour)
	ts.now = func() time.Time { return issuedAt }

	tr, err := ts.Issue(ctx, "ops")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	ts.now = func() time.Time { return time.Now().UTC() }

	if _, err := ts.Verify(ctx, tr.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenServiceRejectsTamperedAndForeign(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenService("test-secret", time.Hour)
	tr, err := ts.Issue(ctx, "ops")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(tr.AccessToken, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	other, err := newTestTokenService("other-secret", time.Hour).Issue(ctx, "ops")
	if err != nil {
		t.Fatalf("issue other: %v", err)
	}

	cases := map[string]string{
		"tampered signature": tampered,
		"foreign key":        other.AccessToken,
		"garbage":            "not.a.token",
		"empty":              "",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ts.Verify(ctx, tok); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenServiceRejectsNonAdminAndWrongAlg(t *testing.T) {
	ctx := context.Background()
	key := []byte("test-secret")
	ts := newTestTokenService(string(key), time.Hour)
	now := time.Now()

	guestClaims := AdminClaims{
		Role: "guest",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wedding-guests-test",
			Audience:  jwt.ClaimStrings{"admin"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, guestClaims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ts.Verify(ctx, notAdmin); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for non-admin role, got %v", err)
	}

	adminClaims := guestClaims
	adminClaims.Role = RoleAdmin
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, adminClaims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ts.Verify(ctx, hs512); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512 token, got %v", err)
	}

	noExp := adminClaims
	noExp.ExpiresAt = nil
	unbounded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ts.Verify(ctx, unbounded); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for token without exp, got %v", err)
	}
}

func TestTokenServiceIssueRequiresKey(t *testing.T) {
	if _, err := newTestTokenService("", time.Hour).Issue(context.Background(), "ops"); err == nil {
		t.Fatalf("expected error with empty signing key")
	}
}
