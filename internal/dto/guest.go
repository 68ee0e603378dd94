package dto

import "wedding-guests/internal/domain"

type CreateGuestRequest struct {
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	Password            string  `json:"password,omitempty"`
	Phone               string  `json:"phone"`
	Address             string  `json:"address"`
	City                string  `json:"city"`
	Country             string  `json:"country"`
	GuestType           string  `json:"guest_type"`
	PartnerName         *string `json:"partner_name,omitempty"`
	NumberOfGuests      *int    `json:"number_of_guests,omitempty"`
	DietaryRestrictions string  `json:"dietary_restrictions"`
	SpecialRequests     string  `json:"special_requests"`
}

type GuestResponse struct {
	Message string        `json:"message,omitempty"`
	Guest   *domain.Guest `json:"guest"`
}

type GuestListResponse struct {
	Guests []domain.Guest `json:"guests"`
}

type RespondRequest struct {
	Response string `json:"response"`
}

type CeremonyResponseResponse struct {
	Response *domain.CeremonyResponse `json:"response"`
}
