package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

var now = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

func input(name string, qty, days int) model.MedicineInput {
	return model.MedicineInput{
		Name:       name,
		Quantity:   qty,
		ExpiryDate: model.DateOf(now).AddDays(days),
		UserID:     1,
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	require.NoError(t, Fields(input("Aspirin", 0, 10)))
	require.ErrorIs(t, Fields(input("   ", 1, 10)), errs.ErrValidation)
	require.ErrorIs(t, Fields(input("Aspirin", -1, 10)), errs.ErrValidation)

	noDate := input("Aspirin", 1, 10)
	noDate.ExpiryDate = model.Date{}
	err := Fields(noDate)
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, "validation: expiry date is required", err.Error())
}

func TestCreate_FutureOnly(t *testing.T) {
	t.Parallel()

	require.NoError(t, Create(input("Aspirin", 5, 1), now))
	require.ErrorIs(t, Create(input("Aspirin", 5, 0), now), errs.ErrValidation)
	require.ErrorIs(t, Create(input("Aspirin", 5, -3), now), errs.ErrValidation)
	// Field errors win over the date rule.
	require.EqualError(t, Create(input("", 5, -3), now), "validation: name is required")
}

func TestUpdate_AllowsPastExpiry(t *testing.T) {
	t.Parallel()

	require.NoError(t, Update(input("Aspirin", 5, -30)))
	require.ErrorIs(t, Update(input("Aspirin", -5, 30)), errs.ErrValidation)
}

func TestServer(t *testing.T) {
	t.Parallel()

	require.NoError(t, Server(input("Ab", 0, -1)))
	require.ErrorIs(t, Server(input("A", 0, 1)), errs.ErrValidation)
	require.ErrorIs(t, Server(input(strings.Repeat("x", NameMax+1), 0, 1)), errs.ErrValidation)

	noUser := input("Aspirin", 1, 1)
	noUser.UserID = 0
	require.ErrorIs(t, Server(noUser), errs.ErrValidation)
}
