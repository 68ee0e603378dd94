package domain

import (
	"strings"
	"time"
)

type GuestType string

const (
	GuestTypeSingle GuestType = "single"
	GuestTypeCouple GuestType = "couple"
	GuestTypeFamily GuestType = "family"
)

func (t GuestType) Valid() bool {
	switch t {
	case GuestTypeSingle, GuestTypeCouple, GuestTypeFamily:
		return true
	}
	return false
}

type Guest struct {
	ID                  GuestID   `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Name                string    `gorm:"type:text;not null" db:"name" json:"name"`
	Email               string    `gorm:"type:varchar(320);not null;uniqueIndex:ux_guests_email" db:"email" json:"email"`
	Phone               string    `gorm:"type:text" db:"phone" json:"phone"`
	Address             string    `gorm:"type:text" db:"address" json:"address"`
	City                string    `gorm:"type:text" db:"city" json:"city"`
	Country             string    `gorm:"type:text" db:"country" json:"country"`
	GuestType           GuestType `gorm:"type:varchar(16);not null;default:'single'" db:"guest_type" json:"guest_type"`
	PartnerName         *string   `gorm:"type:text" db:"partner_name" json:"partner_name"`
	NumberOfGuests      int       `gorm:"not null;default:1" db:"number_of_guests" json:"number_of_guests"`
	DietaryRestrictions string    `gorm:"type:text" db:"dietary_restrictions" json:"dietary_restrictions"`
	SpecialRequests     string    `gorm:"type:text" db:"special_requests" json:"special_requests"`
	// bcrypt hash; never serialised.
	PasswordHash string    `gorm:"column:password;type:text;not null" db:"password" json:"-"`
	CreatedAt    time.Time `gorm:"not null;index:ix_guests_created_at" db:"created_at" json:"created_at"`

	Responses []CeremonyResponse `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"responses"`
}

func (Guest) TableName() string { return "guests" }

// Public returns a copy safe to hand to callers: no credential, non-nil responses.
func (g Guest) Public() Guest {
	g.PasswordHash = ""
	if g.Responses == nil {
		g.Responses = []CeremonyResponse{}
	}
	return g
}

// NormalizeEmail is applied before every write and lookup so that addresses
// differing only by case or surrounding space map to the same guest.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
