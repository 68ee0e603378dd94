package impl

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"

	"wedding-guests/internal/domain"
	"wedding-guests/internal/dto"
	"wedding-guests/internal/observability/metrics"
	"wedding-guests/internal/observability/middleware"
	"wedding-guests/internal/service"
)

var _ service.AdminService = (*AdminServiceImpl)(nil)

// AdminServiceImpl authenticates the single operator account configured
// through ADMIN_USERNAME / ADMIN_PASSWORD_HASH and mints admin tokens.
type AdminServiceImpl struct {
	Username        string
	PasswordHash    string
	PasswordService service.PasswordService
	TService        service.TokenService
}

func NewAdminServiceImpl(username, passwordHash string, ps service.PasswordService, ts service.TokenService) *AdminServiceImpl {
	return &AdminServiceImpl{
		Username:        username,
		PasswordHash:    passwordHash,
		PasswordService: ps,
		TService:        ts,
	}
}

func (a *AdminServiceImpl) Login(ctx context.Context, r dto.AdminLoginRequest) (*dto.TokenResponse, error) {
	result := "success"
	defer func() {
		metrics.AdminLoginsTotal.WithLabelValues(result).Inc()
	}()

	username := strings.TrimSpace(r.Username)
	if username == "" || r.Password == "" {
		result = "invalid"
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyCredential)
	}

	// always run the hash check so a wrong username costs the same as a wrong password
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	pwOK, err := a.PasswordService.Verify(r.Password, a.PasswordHash)
	if err != nil {
		slog.Error("configured admin password hash unreadable", "error", err,
			"request_id", middleware.RequestIDFromContext(ctx))
	}
	if !userOK || !pwOK {
		result = "failure"
		slog.Warn("admin login rejected", "request_id", middleware.RequestIDFromContext(ctx))
		return nil, domain.ErrInvalidCredentials
	}

	tr, err := a.TService.Issue(ctx, username)
	if err != nil {
		result = "failure"
		return nil, err
	}
	return tr, nil
}
