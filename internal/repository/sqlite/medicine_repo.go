// Package sqlite implements the medicine repository on an embedded SQLite
// database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/repository"
)

const medicineCols = `id, name, quantity, expiry_date, added_date, user_id`

const (
	qInsert          = `INSERT INTO medicines (name, quantity, expiry_date, added_date, user_id) VALUES (?,?,?,?,?)`
	qGetByID         = `SELECT ` + medicineCols + ` FROM medicines WHERE id=?`
	qUpdate          = `UPDATE medicines SET name=?, quantity=?, expiry_date=? WHERE id=?`
	qDelete          = `DELETE FROM medicines WHERE id=?`
	qListByUser      = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=? ORDER BY id`
	qExpiredBefore   = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=? AND expiry_date<? ORDER BY expiry_date, id`
	qExpiringBetween = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=? AND expiry_date BETWEEN ? AND ? ORDER BY expiry_date, id`
	qQuantityBelow   = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=? AND quantity<? ORDER BY quantity, id`
	qSearchByName    = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=? AND unicode_lower(name) LIKE ? ESCAPE '\' ORDER BY name, id`
	qAllExpired      = `SELECT ` + medicineCols + ` FROM medicines WHERE expiry_date<? ORDER BY user_id, expiry_date, id`
)

// SQLite's built-in LOWER folds ASCII only; search needs the same folding
// that repository.LikePattern applies to the term.
func init() {
	if err := sqlite.RegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("sqlite: register unicode_lower: %v", err))
	}
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Open opens the database at dsn. SQLite serialises writers, so the pool is
// capped at one connection; this also keeps ":memory:" databases shared.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

type medicineRow struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Quantity   int    `db:"quantity"`
	ExpiryDate string `db:"expiry_date"`
	AddedDate  string `db:"added_date"`
	UserID     int64  `db:"user_id"`
}

func (r medicineRow) toModel() (model.Medicine, error) {
	expiry, err := model.ParseDate(r.ExpiryDate)
	if err != nil {
		return model.Medicine{}, fmt.Errorf("medicine %d: %w", r.ID, err)
	}
	added, err := time.Parse(time.RFC3339Nano, r.AddedDate)
	if err != nil {
		return model.Medicine{}, fmt.Errorf("medicine %d: added_date: %w", r.ID, err)
	}
	return model.Medicine{
		ID:         r.ID,
		Name:       r.Name,
		Quantity:   r.Quantity,
		ExpiryDate: expiry,
		AddedDate:  added,
		UserID:     r.UserID,
	}, nil
}

// MedicineRepo implements repository.MedicineRepository on SQLite.
type MedicineRepo struct{ db *sqlx.DB }

var _ repository.MedicineRepository = (*MedicineRepo)(nil)

func NewMedicineRepo(db *sqlx.DB) *MedicineRepo { return &MedicineRepo{db: db} }

func (r *MedicineRepo) Create(ctx context.Context, m model.Medicine) (model.Medicine, error) {
	res, err := r.db.ExecContext(ctx, qInsert,
		m.Name, m.Quantity, m.ExpiryDate.String(), m.AddedDate.UTC().Format(time.RFC3339Nano), m.UserID)
	if err != nil {
		return model.Medicine{}, err
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return model.Medicine{}, err
	}
	return m, nil
}

func (r *MedicineRepo) GetByID(ctx context.Context, id int64) (model.Medicine, error) {
	var row medicineRow
	if err := r.db.GetContext(ctx, &row, qGetByID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Medicine{}, errs.ErrNotFound
		}
		return model.Medicine{}, err
	}
	return row.toModel()
}

func (r *MedicineRepo) Update(ctx context.Context, m model.Medicine) error {
	res, err := r.db.ExecContext(ctx, qUpdate, m.Name, m.Quantity, m.ExpiryDate.String(), m.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *MedicineRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, qDelete, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *MedicineRepo) ListByUser(ctx context.Context, userID int64) ([]model.Medicine, error) {
	return r.list(ctx, qListByUser, userID)
}

func (r *MedicineRepo) ListExpiredBefore(ctx context.Context, userID int64, day model.Date) ([]model.Medicine, error) {
	return r.list(ctx, qExpiredBefore, userID, day.String())
}

func (r *MedicineRepo) ListExpiringBetween(ctx context.Context, userID int64, from, to model.Date) ([]model.Medicine, error) {
	return r.list(ctx, qExpiringBetween, userID, from.String(), to.String())
}

func (r *MedicineRepo) ListQuantityBelow(ctx context.Context, userID int64, threshold int) ([]model.Medicine, error) {
	return r.list(ctx, qQuantityBelow, userID, threshold)
}

func (r *MedicineRepo) SearchByName(ctx context.Context, userID int64, term string) ([]model.Medicine, error) {
	return r.list(ctx, qSearchByName, userID, repository.LikePattern(term))
}

func (r *MedicineRepo) ListAllExpiredBefore(ctx context.Context, day model.Date) ([]model.Medicine, error) {
	return r.list(ctx, qAllExpired, day.String())
}

func (r *MedicineRepo) list(ctx context.Context, q string, args ...any) ([]model.Medicine, error) {
	var rows []medicineRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]model.Medicine, 0, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
