package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var (
	cols  = []string{"id", "name", "quantity", "expiry_date", "added_date", "user_id"}
	added = time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	day   = model.NewDate(2025, 6, 15)
)

func TestMedicineRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMedicineRepo(db)

	in := model.Medicine{Name: "Aspirin", Quantity: 5, ExpiryDate: day, AddedDate: added, UserID: 1}
	mock.ExpectQuery(regexp.QuoteMeta(qInsert)).
		WithArgs("Aspirin", 5, day.Time(), added, int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	out, err := r.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, int64(42), out.ID)
	require.Equal(t, "Aspirin", out.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicineRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMedicineRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qGetByID)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(7), "Insulin", 3, day.Time(), added, int64(2)))

	m, err := r.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Insulin", m.Name)
	require.Equal(t, 3, m.Quantity)
	require.True(t, m.ExpiryDate.Equal(day))
	require.Equal(t, int64(2), m.UserID)
}

func TestMedicineRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMedicineRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qGetByID)).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByID(context.Background(), 9)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMedicineRepo_UpdateDelete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMedicineRepo(db)
	ctx := context.Background()

	m := model.Medicine{ID: 3, Name: "Ibuprofen", Quantity: 20, ExpiryDate: day}
	mock.ExpectExec(regexp.QuoteMeta(qUpdate)).
		WithArgs(int64(3), "Ibuprofen", 20, day.Time()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Update(ctx, m))

	mock.ExpectExec(regexp.QuoteMeta(qUpdate)).
		WithArgs(int64(3), "Ibuprofen", 20, day.Time()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.Update(ctx, m), errs.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(qDelete)).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, 3))

	mock.ExpectExec(regexp.QuoteMeta(qDelete)).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, 3), errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicineRepo_Lists(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMedicineRepo(db)
	ctx := context.Background()

	row := func() *pgxmock.Rows {
		return pgxmock.NewRows(cols).AddRow(int64(1), "Aspirin", 5, day.AddDays(-2).Time(), added, int64(1))
	}

	mock.ExpectQuery(regexp.QuoteMeta(qListByUser)).WithArgs(int64(1)).WillReturnRows(row())
	mock.ExpectQuery(regexp.QuoteMeta(qExpiredBefore)).WithArgs(int64(1), day.Time()).WillReturnRows(row())
	mock.ExpectQuery(regexp.QuoteMeta(qExpiringBetween)).WithArgs(int64(1), day.Time(), day.AddDays(30).Time()).
		WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectQuery(regexp.QuoteMeta(qQuantityBelow)).WithArgs(int64(1), 10).WillReturnRows(row())
	mock.ExpectQuery(regexp.QuoteMeta(qSearchByName)).WithArgs(int64(1), "%asp%").WillReturnRows(row())
	mock.ExpectQuery(regexp.QuoteMeta(qAllExpired)).WithArgs(day.Time()).WillReturnRows(row())

	out, err := r.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].ExpiryDate.Equal(day.AddDays(-2)))

	out, err = r.ListExpiredBefore(ctx, 1, day)
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = r.ListExpiringBetween(ctx, 1, day, day.AddDays(30))
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)

	out, err = r.ListQuantityBelow(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = r.SearchByName(ctx, 1, "ASP")
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = r.ListAllExpiredBefore(ctx, day)
	require.NoError(t, err)
	require.Len(t, out, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicineRepo_ListQueryError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMedicineRepo(db)

	boom := errors.New("conn reset")
	mock.ExpectQuery(regexp.QuoteMeta(qListByUser)).WithArgs(int64(1)).WillReturnError(boom)
	_, err := r.ListByUser(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}
