package service

import (
	"context"

	"wedding-guests/internal/domain"
	"wedding-guests/internal/dto"
)

type GuestService interface {
	Register(ctx context.Context, r dto.CreateGuestRequest) (*domain.Guest, error)
	Login(ctx context.Context, r dto.LoginRequest) (*domain.Guest, error)
	List(ctx context.Context) ([]domain.Guest, error)
	FindByEmail(ctx context.Context, email string) (*domain.Guest, error)
	DeleteByEmail(ctx context.Context, email string) (*domain.Guest, error)
	Respond(ctx context.Context, email string, ceremony domain.CeremonyType, response domain.RSVP) (*domain.CeremonyResponse, error)
}
