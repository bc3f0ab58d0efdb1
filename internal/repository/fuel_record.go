package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fuelapi/internal/model"
)

// FuelRecordRepository is the persistence contract for fuel records. Every
// read and write is scoped to the owning user; a record owned by someone else
// behaves exactly like a missing one.
type FuelRecordRepository interface {
	// Create inserts rec and returns the stored row.
	Create(ctx context.Context, rec *model.FuelRecord) (*model.FuelRecord, error)

	// FindByID returns sql.ErrNoRows when the record is absent or not owned by ownerID.
	FindByID(ctx context.Context, id, ownerID string) (*model.FuelRecord, error)

	// ListByOwner pages through ownerID's records, newest first.
	ListByOwner(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.FuelRecord], error)

	// ListByOwnerBetween returns records created in [from, to], newest first.
	ListByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]model.FuelRecord, error)

	// Update overwrites the mutable fields of rec. It returns sql.ErrNoRows when
	// the record is absent or not owned by rec.UserID.
	Update(ctx context.Context, rec *model.FuelRecord) (*model.FuelRecord, error)

	// Delete removes the record and reports whether a row was deleted.
	Delete(ctx context.Context, id, ownerID string) (bool, error)

	SumAmount(ctx context.Context, ownerID string) (decimal.Decimal, error)
	SumLiters(ctx context.Context, ownerID string) (decimal.Decimal, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
