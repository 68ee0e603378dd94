package service

import (
	"context"

	"wedding-guests/internal/dto"
)

type AdminService interface {
	Login(ctx context.Context, r dto.AdminLoginRequest) (*dto.TokenResponse, error)
}
