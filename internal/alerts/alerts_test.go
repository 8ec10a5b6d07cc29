package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

var now = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func TestDescribe(t *testing.T) {
	t.Parallel()

	today := model.DateOf(now)
	require.Equal(t, "Expired 2 days ago", Describe(TabExpired, model.Medicine{ExpiryDate: today.AddDays(-2)}, now))
	require.Equal(t, "Expired 0 days ago", Describe(TabExpired, model.Medicine{ExpiryDate: today}, now))
	require.Equal(t, "Expires in 10 days", Describe(TabExpiring, model.Medicine{ExpiryDate: today.AddDays(10)}, now))
	require.Equal(t, "Expires in 0 days", Describe(TabExpiring, model.Medicine{ExpiryDate: today}, now))
	require.Equal(t, "Only 3 left in stock", Describe(TabLowStock, model.Medicine{Quantity: 3}, now))
}

func TestDescribe_DistantDates(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "Expired 119357 days ago", Describe(TabExpired, model.Medicine{ExpiryDate: model.NewDate(1700, 1, 1)}, at))
	require.Equal(t, "Expires in 136312 days", Describe(TabExpiring, model.Medicine{ExpiryDate: model.NewDate(2400, 1, 1)}, at))
}

func TestBuild_TrustsServerLists(t *testing.T) {
	t.Parallel()

	today := model.DateOf(now)
	// A medicine that is not expired still renders under the expired tab:
	// the server owns category semantics.
	list := []model.Medicine{
		{ID: 1, ExpiryDate: today.AddDays(-5)},
		{ID: 2, ExpiryDate: today.AddDays(3)},
	}
	got := Build(TabExpired, list, now)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].Medicine.ID)
	require.Equal(t, "Expired 5 days ago", got[0].Text)
	require.Equal(t, "Expired 3 days ago", got[1].Text)

	require.Empty(t, Build(TabLowStock, nil, now))
}

func TestParseTab(t *testing.T) {
	t.Parallel()

	for _, tab := range Tabs {
		got, err := ParseTab(string(tab))
		require.NoError(t, err)
		require.Equal(t, tab, got)
		require.NotEmpty(t, got.Title())
		require.NotEmpty(t, got.EmptyText())
	}
	_, err := ParseTab("soon")
	require.ErrorIs(t, err, errs.ErrValidation)
}
