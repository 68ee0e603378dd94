package store

import (
	"context"
	"time"

	"wedding-guests/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CeremonyResponseStore struct{ db *gorm.DB }

func (s *Store) CeremonyResponses() *CeremonyResponseStore {
	return &CeremonyResponseStore{db: s.DB}
}

// Seed inserts a pending response for each ceremony type the guest has no
// response for yet. Re-running it after a partial failure adds only the
// missing rows.
func (cs *CeremonyResponseStore) Seed(ctx context.Context, guestID domain.GuestID, types []domain.CeremonyType) error {
	if len(types) == 0 {
		return nil
	}
	rows := make([]domain.CeremonyResponse, 0, len(types))
	for _, ct := range types {
		rows = append(rows, domain.CeremonyResponse{
			ID:           uuid.New(),
			GuestID:      guestID,
			CeremonyType: ct,
			Response:     domain.RSVPPending,
		})
	}
	err := cs.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guest_id"}, {Name: "ceremony_type"}},
			DoNothing: true,
		}).
		Create(&rows).Error
	return wrapErr(err)
}

func (cs *CeremonyResponseStore) ListByGuest(ctx context.Context, guestID domain.GuestID) ([]domain.CeremonyResponse, error) {
	out := []domain.CeremonyResponse{}
	err := cs.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("ceremony_type ASC").
		Find(&out).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

// Update sets the response for one ceremony. at is stored as response_date.
func (cs *CeremonyResponseStore) Update(ctx context.Context, guestID domain.GuestID, ct domain.CeremonyType, r domain.RSVP, at *time.Time) (*domain.CeremonyResponse, error) {
	db := cs.db.WithContext(ctx)
	res := db.Model(&domain.CeremonyResponse{}).
		Where("guest_id = ? AND ceremony_type = ?", guestID, ct).
		Updates(map[string]any{"response": r, "response_date": at})
	if res.Error != nil {
		return nil, wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	var out domain.CeremonyResponse
	if err := db.First(&out, "guest_id = ? AND ceremony_type = ?", guestID, ct).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &out, nil
}

func (cs *CeremonyResponseStore) DeleteByGuest(ctx context.Context, guestID domain.GuestID) (int64, error) {
	res := cs.db.WithContext(ctx).Where("guest_id = ?", guestID).Delete(&domain.CeremonyResponse{})
	return res.RowsAffected, wrapErr(res.Error)
}
