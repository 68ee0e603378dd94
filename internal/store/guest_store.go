package store

import (
	"context"
	"time"

	"wedding-guests/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GuestStore struct{ db *gorm.DB }

func (s *Store) Guests() *GuestStore { return &GuestStore{db: s.DB} }

// Create inserts g. The unique index on email decides duplicate races, so
// there is no read-before-write here.
func (gs *GuestStore) Create(ctx context.Context, g *domain.Guest) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.Email = domain.NormalizeEmail(g.Email)

	// responses are seeded separately; never let gorm upsert associations here
	if err := gs.db.WithContext(ctx).Omit("Responses").Create(g).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return wrapErr(err)
	}
	return nil
}

// List returns every guest, newest first, each with its responses ordered by
// ceremony type. A guest without responses gets an empty slice.
func (gs *GuestStore) List(ctx context.Context) ([]domain.Guest, error) {
	guests := []domain.Guest{}
	err := gs.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("ceremony_type ASC")
		}).
		Order("created_at DESC").
		Find(&guests).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	for i := range guests {
		if guests[i].Responses == nil {
			guests[i].Responses = []domain.CeremonyResponse{}
		}
	}
	return guests, nil
}

func (gs *GuestStore) GetByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	var g domain.Guest
	err := gs.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("ceremony_type ASC")
		}).
		First(&g, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	if g.Responses == nil {
		g.Responses = []domain.CeremonyResponse{}
	}
	return &g, nil
}

// DeleteByEmail removes the guest and its responses. Call it inside WithTx so
// both deletes commit together; the foreign key cascade covers rows written
// by anything else.
func (gs *GuestStore) DeleteByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	g, err := gs.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	responses := &CeremonyResponseStore{db: gs.db}
	if _, err := responses.DeleteByGuest(ctx, g.ID); err != nil {
		return nil, err
	}
	res := gs.db.WithContext(ctx).Where("id = ?", g.ID).Delete(&domain.Guest{})
	if res.Error != nil {
		return nil, wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// lost a race with a concurrent delete
		return nil, domain.ErrNotFound
	}
	return g, nil
}
