package store

import (
	"context"

	"wedding-guests/internal/domain"

	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Migrate creates or updates the guests and ceremony_responses tables,
// including the unique indexes and the cascading foreign key.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).AutoMigrate(&domain.Guest{}, &domain.CeremonyResponse{}); err != nil {
		return wrapErr(err)
	}
	return nil
}

// Ping reports whether the underlying connection pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return wrapErr(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return wrapErr(err)
	}
	return nil
}
