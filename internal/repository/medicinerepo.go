package repository

import (
	"context"
	"strings"

	"github.com/musharraf10/MediMate/internal/model"
)

// MedicineRepository provides persistence for medicine records.
// Lookups of a missing id return errs.ErrNotFound.
type MedicineRepository interface {
	// Create stores m and returns it with the assigned ID.
	Create(ctx context.Context, m model.Medicine) (model.Medicine, error)
	GetByID(ctx context.Context, id int64) (model.Medicine, error)
	// Update overwrites name, quantity and expiry of the record with m.ID.
	Update(ctx context.Context, m model.Medicine) error
	Delete(ctx context.Context, id int64) error

	ListByUser(ctx context.Context, userID int64) ([]model.Medicine, error)
	// ListExpiredBefore returns medicines with expiry strictly before day.
	ListExpiredBefore(ctx context.Context, userID int64, day model.Date) ([]model.Medicine, error)
	// ListExpiringBetween returns medicines with expiry in [from, to].
	ListExpiringBetween(ctx context.Context, userID int64, from, to model.Date) ([]model.Medicine, error)
	// ListQuantityBelow returns medicines with quantity strictly below threshold.
	ListQuantityBelow(ctx context.Context, userID int64, threshold int) ([]model.Medicine, error)
	// SearchByName matches a case-insensitive substring of the name.
	SearchByName(ctx context.Context, userID int64, term string) ([]model.Medicine, error)
	// ListAllExpiredBefore spans every user, ordered by user then expiry.
	ListAllExpiredBefore(ctx context.Context, day model.Date) ([]model.Medicine, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a search term into a lower-cased LIKE pattern matching any
// name containing it. Use with ESCAPE '\'.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
