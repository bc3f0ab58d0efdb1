package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"fuelapi/internal/model"
	"fuelapi/internal/repository"
)

// FuelRecordPostgres is a PostgreSQL implementation of repository.FuelRecordRepository.
type FuelRecordPostgres struct {
	db *sql.DB
}

// NewFuelRecordPostgres creates a new FuelRecordPostgres repository.
func NewFuelRecordPostgres(db *sql.DB) *FuelRecordPostgres {
	return &FuelRecordPostgres{db: db}
}

var _ repository.FuelRecordRepository = (*FuelRecordPostgres)(nil)

const recordColumns = `id, user_id, station_name, station_brand, fuel_type, amount, liters,
		price_per_liter, receipt_image_url, extracted_data, location, purchase_date,
		created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.FuelRecord, error) {
	var r model.FuelRecord
	if err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.StationName,
		&r.StationBrand,
		&r.FuelType,
		&r.Amount,
		&r.Liters,
		&r.PricePerLiter,
		&r.ReceiptImageURL,
		&r.ExtractedData,
		&r.Location,
		&r.PurchaseDate,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new fuel record and returns the stored row.
func (r *FuelRecordPostgres) Create(ctx context.Context, rec *model.FuelRecord) (*model.FuelRecord, error) {
	const q = `
		INSERT INTO fuel_records (id, user_id, station_name, station_brand, fuel_type, amount, liters,
			price_per_liter, receipt_image_url, extracted_data, location, purchase_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.UserID,
		rec.StationName,
		rec.StationBrand,
		rec.FuelType,
		rec.Amount,
		rec.Liters,
		rec.PricePerLiter,
		rec.ReceiptImageURL,
		rec.ExtractedData,
		rec.Location,
		rec.PurchaseDate,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return scanRecord(row)
}

// FindByID fetches a single record owned by ownerID.
func (r *FuelRecordPostgres) FindByID(ctx context.Context, id, ownerID string) (*model.FuelRecord, error) {
	const q = `SELECT ` + recordColumns + `
		FROM fuel_records
		WHERE id = $1 AND user_id = $2`
	return scanRecord(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// ListByOwner returns one page of records plus the owner's total count.
func (r *FuelRecordPostgres) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.FuelRecord], error) {
	total, err := r.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	const q = `SELECT ` + recordColumns + `
		FROM fuel_records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	items, err := r.query(ctx, q, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.FuelRecord]{
		Items: items,
		Total: int(total),
	}, nil
}

// ListByOwnerBetween returns records created within [from, to].
func (r *FuelRecordPostgres) ListByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]model.FuelRecord, error) {
	const q = `SELECT ` + recordColumns + `
		FROM fuel_records
		WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q, ownerID, from, to)
}

func (r *FuelRecordPostgres) query(ctx context.Context, q string, args ...any) ([]model.FuelRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FuelRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the mutable columns of an owned record.
func (r *FuelRecordPostgres) Update(ctx context.Context, rec *model.FuelRecord) (*model.FuelRecord, error) {
	const q = `
		UPDATE fuel_records
		SET station_name = $3, station_brand = $4, fuel_type = $5, amount = $6, liters = $7,
			price_per_liter = $8, location = $9, purchase_date = $10, updated_at = $11
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.UserID,
		rec.StationName,
		rec.StationBrand,
		rec.FuelType,
		rec.Amount,
		rec.Liters,
		rec.PricePerLiter,
		rec.Location,
		rec.PurchaseDate,
		rec.UpdatedAt,
	)
	return scanRecord(row)
}

// Delete removes an owned record.
func (r *FuelRecordPostgres) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `DELETE FROM fuel_records WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SumAmount totals the owner's spend; zero when there are no records.
func (r *FuelRecordPostgres) SumAmount(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM fuel_records WHERE user_id = $1`, ownerID)
}

// SumLiters totals the owner's volume; zero when there are no records.
func (r *FuelRecordPostgres) SumLiters(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(liters), 0) FROM fuel_records WHERE user_id = $1`, ownerID)
}

func (r *FuelRecordPostgres) sum(ctx context.Context, q, ownerID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// CountByOwner counts the owner's records.
func (r *FuelRecordPostgres) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fuel_records WHERE user_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
