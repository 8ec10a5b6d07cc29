// Package validate holds the write-path checks for medicine input.
//
// Client checks are advisory: they avoid obviously wasted round trips, and the
// service still validates on its own.
package validate

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

// Name length bounds enforced by the service.
const (
	NameMin = 2
	NameMax = 100
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errs.ErrValidation}, args...)...)
}

// Fields checks what both create and update require: a non-blank name,
// a non-negative quantity and an expiry date.
func Fields(in model.MedicineInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if in.Quantity < 0 {
		return invalid("quantity cannot be negative")
	}
	if in.ExpiryDate.IsZero() {
		return invalid("expiry date is required")
	}
	return nil
}

// Create validates input for a new medicine. The expiry date must be strictly
// after the calendar day of now.
func Create(in model.MedicineInput, now time.Time) error {
	if err := Fields(in); err != nil {
		return err
	}
	if !in.ExpiryDate.After(model.DateOf(now)) {
		return invalid("expiry date must be in the future")
	}
	return nil
}

// Update validates input for an existing medicine. The future-date rule is
// not applied so a record can be corrected to a past expiry.
func Update(in model.MedicineInput) error {
	return Fields(in)
}

// Server applies the service-side rule set: Fields plus name length and owner.
func Server(in model.MedicineInput) error {
	if err := Fields(in); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Name)); n < NameMin || n > NameMax {
		return invalid("name must be between %d and %d characters", NameMin, NameMax)
	}
	if in.UserID <= 0 {
		return invalid("user id is required")
	}
	return nil
}
