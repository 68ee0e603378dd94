package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wedding-guests/internal/domain"
	"wedding-guests/internal/dto"
	"wedding-guests/internal/observability/metrics"
	"wedding-guests/internal/observability/middleware"
	"wedding-guests/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ service.TokenService = (*TokenServiceImpl)(nil)

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "wedding-guests"
	Audience   string        // e.g. "admin"
	AccessTTL  time.Duration // e.g. 12 * time.Hour
	SigningKey []byte        // HS256 secret
}

// ====== Claims ======

const RoleAdmin = "admin"

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Issue signs an admin access token for subject.
func (t *TokenServiceImpl) Issue(ctx context.Context, subject string) (*dto.TokenResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(result).Inc()
	}()
	if len(t.cfg.SigningKey) == 0 {
		result = "failure"
		return nil, errors.New("token service: empty signing key")
	}

	now := t.now()
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   subject,
			Audience:  audience(t.cfg.Audience),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("sign admin token: %w", err)
	}

	slog.Info("issued admin token",
		"subject", subject,
		"jti", claims.ID,
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

// Verify accepts only HS256 tokens signed with the configured key, carrying
// an expiry, the configured issuer and audience, and the admin role. Every
// failure is reported as domain.ErrInvalidToken.
func (t *TokenServiceImpl) Verify(ctx context.Context, tokenStr string) (*service.AdminClaims, error) {
	claims := &AdminClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}
	if t.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(t.cfg.Audience))
	}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		slog.Debug("admin token rejected", "error", err, "request_id", middleware.RequestIDFromContext(ctx))
		return nil, domain.ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, domain.ErrInvalidToken
	}
	return &service.AdminClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
		TokenID: claims.ID,
	}, nil
}

func audience(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
