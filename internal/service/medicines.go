package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/repository"
	"github.com/musharraf10/MediMate/internal/status"
	"github.com/musharraf10/MediMate/internal/validate"
)

// DefaultLowStockThreshold applies when a low-stock query omits the threshold.
const DefaultLowStockThreshold = 5

// MedicineService defines the inventory operations served over HTTP and used
// by the scheduler.
type MedicineService interface {
	// Add stores a new medicine. The expiry may be today but not earlier.
	Add(ctx context.Context, in model.MedicineInput) (model.Medicine, error)
	// Get returns one medicine or errs.ErrNotFound.
	Get(ctx context.Context, id int64) (model.Medicine, error)
	// Update replaces name, quantity and expiry of an existing medicine.
	Update(ctx context.Context, id int64, in model.MedicineInput) (model.Medicine, error)
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, userID int64) ([]model.Medicine, error)
	// Expired lists medicines whose expiry is before today.
	Expired(ctx context.Context, userID int64) ([]model.Medicine, error)
	// ExpiringSoon lists medicines expiring in [today, today+30 days].
	ExpiringSoon(ctx context.Context, userID int64) ([]model.Medicine, error)
	// LowStock lists medicines with quantity below threshold; threshold <= 0
	// selects the configured default.
	LowStock(ctx context.Context, userID int64, threshold int) ([]model.Medicine, error)
	// Search matches a case-insensitive name substring. term must be non-blank.
	Search(ctx context.Context, userID int64, term string) ([]model.Medicine, error)
	// AllExpired lists expired medicines of every user.
	AllExpired(ctx context.Context) ([]model.Medicine, error)
}

type MedicineServiceImpl struct {
	repo         repository.MedicineRepository
	lowThreshold int
	now          func() time.Time
	log          *zap.Logger
}

// Option customises a MedicineServiceImpl.
type Option func(*MedicineServiceImpl)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MedicineServiceImpl) { s.now = now }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *MedicineServiceImpl) { s.log = log }
}

// NewMedicineService constructs the service. lowThreshold <= 0 falls back to
// DefaultLowStockThreshold.
func NewMedicineService(repo repository.MedicineRepository, lowThreshold int, opts ...Option) *MedicineServiceImpl {
	if lowThreshold <= 0 {
		lowThreshold = DefaultLowStockThreshold
	}
	s := &MedicineServiceImpl{repo: repo, lowThreshold: lowThreshold, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *MedicineServiceImpl) today() model.Date { return model.DateOf(s.now()) }

func (s *MedicineServiceImpl) Add(ctx context.Context, in model.MedicineInput) (model.Medicine, error) {
	if err := validate.Server(in); err != nil {
		return model.Medicine{}, err
	}
	if in.ExpiryDate.Before(s.today()) {
		return model.Medicine{}, fmt.Errorf("%w: expiry date cannot be in the past", errs.ErrValidation)
	}
	m, err := s.repo.Create(ctx, model.Medicine{
		Name:       strings.TrimSpace(in.Name),
		Quantity:   in.Quantity,
		ExpiryDate: in.ExpiryDate,
		AddedDate:  s.now().UTC(),
		UserID:     in.UserID,
	})
	if err != nil {
		return model.Medicine{}, fmt.Errorf("add medicine: %w", err)
	}
	s.log.Info("medicine added", zap.Int64("id", m.ID), zap.Int64("user_id", m.UserID), zap.String("name", m.Name))
	return m, nil
}

func (s *MedicineServiceImpl) Get(ctx context.Context, id int64) (model.Medicine, error) {
	if id <= 0 {
		return model.Medicine{}, fmt.Errorf("%w: invalid id %d", errs.ErrValidation, id)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *MedicineServiceImpl) Update(ctx context.Context, id int64, in model.MedicineInput) (model.Medicine, error) {
	if id <= 0 {
		return model.Medicine{}, fmt.Errorf("%w: invalid id %d", errs.ErrValidation, id)
	}
	if err := validate.Server(in); err != nil {
		return model.Medicine{}, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Medicine{}, err
	}
	m.Name = strings.TrimSpace(in.Name)
	m.Quantity = in.Quantity
	m.ExpiryDate = in.ExpiryDate
	if err := s.repo.Update(ctx, m); err != nil {
		return model.Medicine{}, err
	}
	s.log.Info("medicine updated", zap.Int64("id", m.ID))
	return m, nil
}

func (s *MedicineServiceImpl) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid id %d", errs.ErrValidation, id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("medicine deleted", zap.Int64("id", id))
	return nil
}

func checkUser(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id is required", errs.ErrValidation)
	}
	return nil
}

func (s *MedicineServiceImpl) List(ctx context.Context, userID int64) ([]model.Medicine, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *MedicineServiceImpl) Expired(ctx context.Context, userID int64) ([]model.Medicine, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	return s.repo.ListExpiredBefore(ctx, userID, s.today())
}

func (s *MedicineServiceImpl) ExpiringSoon(ctx context.Context, userID int64) ([]model.Medicine, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	today := s.today()
	return s.repo.ListExpiringBetween(ctx, userID, today, today.AddDays(status.ExpiringSoonDays))
}

func (s *MedicineServiceImpl) LowStock(ctx context.Context, userID int64, threshold int) ([]model.Medicine, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = s.lowThreshold
	}
	return s.repo.ListQuantityBelow(ctx, userID, threshold)
}

func (s *MedicineServiceImpl) Search(ctx context.Context, userID int64, term string) ([]model.Medicine, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: medicine name cannot be empty", errs.ErrValidation)
	}
	return s.repo.SearchByName(ctx, userID, term)
}

func (s *MedicineServiceImpl) AllExpired(ctx context.Context) ([]model.Medicine, error) {
	return s.repo.ListAllExpiredBefore(ctx, s.today())
}
