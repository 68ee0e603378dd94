package domain

import (
	"strings"
	"time"
)

type CeremonyType string

const (
	CeremonyDot   CeremonyType = "dot"
	CeremonyCivil CeremonyType = "civil"
)

// DefaultCeremonyTypes is the set every new guest is seeded with unless
// configuration says otherwise.
var DefaultCeremonyTypes = []CeremonyType{CeremonyDot, CeremonyCivil}

// ParseCeremonyTypes splits a comma separated list, dropping blanks and duplicates.
func ParseCeremonyTypes(raw string) []CeremonyType {
	seen := map[CeremonyType]struct{}{}
	var out []CeremonyType
	for _, part := range strings.Split(raw, ",") {
		ct := CeremonyType(strings.ToLower(strings.TrimSpace(part)))
		if ct == "" {
			continue
		}
		if _, dup := seen[ct]; dup {
			continue
		}
		seen[ct] = struct{}{}
		out = append(out, ct)
	}
	return out
}

type RSVP string

const (
	RSVPPending  RSVP = "pending"
	RSVPAccepted RSVP = "accepted"
	RSVPDeclined RSVP = "declined"
)

func (r RSVP) Valid() bool {
	switch r {
	case RSVPPending, RSVPAccepted, RSVPDeclined:
		return true
	}
	return false
}

type CeremonyResponse struct {
	ID           ResponseID   `gorm:"type:uuid;primaryKey" db:"id" json:"-"`
	GuestID      GuestID      `gorm:"type:uuid;not null;uniqueIndex:ux_responses_guest_ceremony,priority:1" db:"guest_id" json:"-"`
	CeremonyType CeremonyType `gorm:"type:varchar(32);not null;uniqueIndex:ux_responses_guest_ceremony,priority:2" db:"ceremony_type" json:"ceremony_type"`
	Response     RSVP         `gorm:"type:varchar(16);not null;default:'pending'" db:"response" json:"response"`
	ResponseDate *time.Time   `db:"response_date" json:"response_date"`
}

func (CeremonyResponse) TableName() string { return "ceremony_responses" }
