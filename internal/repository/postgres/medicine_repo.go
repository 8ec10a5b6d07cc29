package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
	"github.com/musharraf10/MediMate/internal/repository"
)

const medicineCols = `id, name, quantity, expiry_date, added_date, user_id`

const (
	qInsert          = `INSERT INTO medicines (name, quantity, expiry_date, added_date, user_id) VALUES ($1,$2,$3,$4,$5) RETURNING id`
	qGetByID         = `SELECT ` + medicineCols + ` FROM medicines WHERE id=$1`
	qUpdate          = `UPDATE medicines SET name=$2, quantity=$3, expiry_date=$4 WHERE id=$1`
	qDelete          = `DELETE FROM medicines WHERE id=$1`
	qListByUser      = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=$1 ORDER BY id`
	qExpiredBefore   = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=$1 AND expiry_date<$2 ORDER BY expiry_date, id`
	qExpiringBetween = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=$1 AND expiry_date BETWEEN $2 AND $3 ORDER BY expiry_date, id`
	qQuantityBelow   = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=$1 AND quantity<$2 ORDER BY quantity, id`
	qSearchByName    = `SELECT ` + medicineCols + ` FROM medicines WHERE user_id=$1 AND LOWER(name) LIKE $2 ESCAPE '\' ORDER BY name, id`
	qAllExpired      = `SELECT ` + medicineCols + ` FROM medicines WHERE expiry_date<$1 ORDER BY user_id, expiry_date, id`
)

// MedicineRepo implements repository.MedicineRepository using PostgreSQL.
type MedicineRepo struct{ db *DB }

var _ repository.MedicineRepository = (*MedicineRepo)(nil)

// NewMedicineRepo constructs a medicine repository.
func NewMedicineRepo(db *DB) *MedicineRepo { return &MedicineRepo{db: db} }

// Create inserts m and returns it with the generated id.
func (r *MedicineRepo) Create(ctx context.Context, m model.Medicine) (model.Medicine, error) {
	err := r.db.Pool.QueryRow(ctx, qInsert, m.Name, m.Quantity, m.ExpiryDate.Time(), m.AddedDate, m.UserID).Scan(&m.ID)
	if err != nil {
		return model.Medicine{}, err
	}
	return m, nil
}

func (r *MedicineRepo) GetByID(ctx context.Context, id int64) (model.Medicine, error) {
	m, err := scanMedicine(r.db.Pool.QueryRow(ctx, qGetByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Medicine{}, errs.ErrNotFound
	}
	return m, err
}

func (r *MedicineRepo) Update(ctx context.Context, m model.Medicine) error {
	tag, err := r.db.Pool.Exec(ctx, qUpdate, m.ID, m.Name, m.Quantity, m.ExpiryDate.Time())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *MedicineRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, qDelete, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *MedicineRepo) ListByUser(ctx context.Context, userID int64) ([]model.Medicine, error) {
	return r.list(ctx, qListByUser, userID)
}

func (r *MedicineRepo) ListExpiredBefore(ctx context.Context, userID int64, day model.Date) ([]model.Medicine, error) {
	return r.list(ctx, qExpiredBefore, userID, day.Time())
}

func (r *MedicineRepo) ListExpiringBetween(ctx context.Context, userID int64, from, to model.Date) ([]model.Medicine, error) {
	return r.list(ctx, qExpiringBetween, userID, from.Time(), to.Time())
}

func (r *MedicineRepo) ListQuantityBelow(ctx context.Context, userID int64, threshold int) ([]model.Medicine, error) {
	return r.list(ctx, qQuantityBelow, userID, threshold)
}

func (r *MedicineRepo) SearchByName(ctx context.Context, userID int64, term string) ([]model.Medicine, error) {
	return r.list(ctx, qSearchByName, userID, repository.LikePattern(term))
}

func (r *MedicineRepo) ListAllExpiredBefore(ctx context.Context, day model.Date) ([]model.Medicine, error) {
	return r.list(ctx, qAllExpired, day.Time())
}

func (r *MedicineRepo) list(ctx context.Context, q string, args ...any) ([]model.Medicine, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMedicine(row pgx.Row) (model.Medicine, error) {
	var (
		m      model.Medicine
		expiry time.Time
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Quantity, &expiry, &m.AddedDate, &m.UserID); err != nil {
		return model.Medicine{}, err
	}
	m.ExpiryDate = model.DateOf(expiry)
	return m, nil
}
