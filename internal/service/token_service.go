package service

import (
	"context"

	"wedding-guests/internal/dto"
)

type TokenService interface {
	Issue(ctx context.Context, subject string) (*dto.TokenResponse, error)
	Verify(ctx context.Context, token string) (*AdminClaims, error)
}

// AdminClaims is what the access guard hands to downstream handlers.
type AdminClaims struct {
	Subject string
	Role    string
	TokenID string
}
