package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wedding-guests/internal/domain"
	"wedding-guests/internal/dto"
	"wedding-guests/internal/observability/metrics"
	"wedding-guests/internal/observability/middleware"
	"wedding-guests/internal/service"
	"wedding-guests/internal/store"

	"github.com/google/uuid"
)

var _ service.GuestService = (*GuestServiceImpl)(nil)

type GuestServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	CeremonyTypes   []domain.CeremonyType

	now func() time.Time

	dummyOnce sync.Once
	dummy     string
}

func NewGuestServiceImpl(st *store.Store, passwordService service.PasswordService, ceremonyTypes []domain.CeremonyType) *GuestServiceImpl {
	if len(ceremonyTypes) == 0 {
		ceremonyTypes = domain.DefaultCeremonyTypes
	}
	return &GuestServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwordService,
		CeremonyTypes:   ceremonyTypes,
	}
}

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Guests() guestStore
	CeremonyResponses() ceremonyResponseStore
}

type guestStore interface {
	Create(ctx context.Context, g *domain.Guest) error
	List(ctx context.Context) ([]domain.Guest, error)
	GetByEmail(ctx context.Context, email string) (*domain.Guest, error)
	DeleteByEmail(ctx context.Context, email string) (*domain.Guest, error)
}

type ceremonyResponseStore interface {
	Seed(ctx context.Context, guestID domain.GuestID, types []domain.CeremonyType) error
	Update(ctx context.Context, guestID domain.GuestID, ct domain.CeremonyType, r domain.RSVP, at *time.Time) (*domain.CeremonyResponse, error)
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Guests() guestStore { return g.tx.Guests() }

func (g gormTxAdapter) CeremonyResponses() ceremonyResponseStore { return g.tx.CeremonyResponses() }

func (s *GuestServiceImpl) nowTime() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *GuestServiceImpl) ceremonyTypes() []domain.CeremonyType {
	if len(s.CeremonyTypes) == 0 {
		return domain.DefaultCeremonyTypes
	}
	return s.CeremonyTypes
}

// Register validates r, hashes the password and, in one transaction, inserts
// the guest and seeds a pending response for every known ceremony.
func (s *GuestServiceImpl) Register(ctx context.Context, r dto.CreateGuestRequest) (*domain.Guest, error) {
	result := "success"
	defer func() {
		metrics.GuestRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	g, err := guestFromRequest(r)
	if err != nil {
		result = "invalid"
		return nil, err
	}

	hash, err := s.PasswordService.Hash(r.Password)
	if err != nil {
		result = "failure"
		return nil, err
	}
	g.PasswordHash = hash
	g.ID = uuid.New()
	g.CreatedAt = s.nowTime()

	var created *domain.Guest
	err = s.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.Guests().Create(ctx, g); err != nil {
			return err
		}
		if err := tx.CeremonyResponses().Seed(ctx, g.ID, s.ceremonyTypes()); err != nil {
			return err
		}
		// read back so the caller sees the seeded responses
		var err error
		created, err = tx.Guests().GetByEmail(ctx, g.Email)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			result = "duplicate"
		} else {
			result = "failure"
		}
		return nil, err
	}

	slog.Info("guest registered",
		"guest_id", g.ID,
		"ceremonies", len(s.ceremonyTypes()),
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)
	out := created.Public()
	return &out, nil
}

func guestFromRequest(r dto.CreateGuestRequest) (*domain.Guest, error) {
	name := strings.TrimSpace(r.Name)
	email := domain.NormalizeEmail(r.Email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyName)
	case email == "":
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyEmail)
	case r.Password == "":
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyPassword)
	}

	gt := domain.GuestType(strings.ToLower(strings.TrimSpace(r.GuestType)))
	if gt == "" {
		gt = domain.GuestTypeSingle
	}
	if !gt.Valid() {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrGuestType)
	}

	count := 1
	if r.NumberOfGuests != nil {
		count = *r.NumberOfGuests
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrGuestCount)
	}

	var partner *string
	if r.PartnerName != nil {
		if p := strings.TrimSpace(*r.PartnerName); p != "" {
			partner = &p
		}
	}

	return &domain.Guest{
		Name:                name,
		Email:               email,
		Phone:               strings.TrimSpace(r.Phone),
		Address:             strings.TrimSpace(r.Address),
		City:                strings.TrimSpace(r.City),
		Country:             strings.TrimSpace(r.Country),
		GuestType:           gt,
		PartnerName:         partner,
		NumberOfGuests:      count,
		DietaryRestrictions: r.DietaryRestrictions,
		SpecialRequests:     r.SpecialRequests,
	}, nil
}

// Login returns the same ErrInvalidCredentials whether the email is unknown,
// the password is wrong or the stored hash is unreadable.
func (s *GuestServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (*domain.Guest, error) {
	result := "success"
	defer func() {
		metrics.GuestLoginsTotal.WithLabelValues(result).Inc()
	}()

	email := domain.NormalizeEmail(r.Email)
	if email == "" || r.Password == "" {
		result = "invalid"
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyCredential)
	}

	var guest *domain.Guest
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		g, err := tx.Guests().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidCredentials // don't leak which check failed
			}
			return err
		}
		guest = g
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// spend the same hashing time as a real check
			_, _ = s.PasswordService.Verify(r.Password, s.dummyHash())
		}
		result = "failure"
		return nil, err
	}

	ok, err := s.PasswordService.Verify(r.Password, guest.PasswordHash)
	if err != nil {
		slog.Error("stored guest credential unreadable", "guest_id", guest.ID, "error", err,
			"request_id", middleware.RequestIDFromContext(ctx))
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}

	out := guest.Public()
	return &out, nil
}

func (s *GuestServiceImpl) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.PasswordService.Hash(uuid.NewString())
	})
	return s.dummy
}

func (s *GuestServiceImpl) List(ctx context.Context) ([]domain.Guest, error) {
	var guests []domain.Guest
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		var err error
		guests, err = tx.Guests().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Guest, 0, len(guests))
	for _, g := range guests {
		out = append(out, g.Public())
	}
	return out, nil
}

func (s *GuestServiceImpl) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyEmail)
	}
	var guest *domain.Guest
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		var err error
		guest, err = tx.Guests().GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := guest.Public()
	return &out, nil
}

// DeleteByEmail removes the guest and all of its responses atomically.
func (s *GuestServiceImpl) DeleteByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	result := "success"
	defer func() {
		metrics.GuestDeletionsTotal.WithLabelValues(result).Inc()
	}()

	email = domain.NormalizeEmail(email)
	if email == "" {
		result = "invalid"
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyEmail)
	}
	var deleted *domain.Guest
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		var err error
		deleted, err = tx.Guests().DeleteByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			result = "not_found"
		} else {
			result = "failure"
		}
		return nil, err
	}

	slog.Info("guest deleted",
		"guest_id", deleted.ID,
		"responses", len(deleted.Responses),
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)
	out := deleted.Public()
	return &out, nil
}

// Respond records a guest's answer for one ceremony. response_date follows
// the answer: stamped for accepted/declined, cleared for pending.
func (s *GuestServiceImpl) Respond(ctx context.Context, email string, ceremony domain.CeremonyType, response domain.RSVP) (*domain.CeremonyResponse, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyEmail)
	}
	ceremony = domain.CeremonyType(strings.ToLower(strings.TrimSpace(string(ceremony))))
	if !s.knownCeremony(ceremony) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrCeremonyType)
	}
	response = domain.RSVP(strings.ToLower(strings.TrimSpace(string(response))))
	if !response.Valid() {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrRSVP)
	}

	var at *time.Time
	if response != domain.RSVPPending {
		now := s.nowTime()
		at = &now
	}

	var out *domain.CeremonyResponse
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		g, err := tx.Guests().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		// heal guests created before this ceremony type was configured
		if err := tx.CeremonyResponses().Seed(ctx, g.ID, []domain.CeremonyType{ceremony}); err != nil {
			return err
		}
		out, err = tx.CeremonyResponses().Update(ctx, g.ID, ceremony, response, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("ceremony response recorded",
		"guest_id", out.GuestID,
		"ceremony_type", ceremony,
		"response", response,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return out, nil
}

func (s *GuestServiceImpl) knownCeremony(ct domain.CeremonyType) bool {
	for _, known := range s.ceremonyTypes() {
		if known == ct {
			return true
		}
	}
	return false
}
