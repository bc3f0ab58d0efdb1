package mocks

import (
	"context"
	"time"

	"fuelapi/internal/model"
	"fuelapi/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockFuelRecordRepository struct {
	mock.Mock
}

func (m *MockFuelRecordRepository) Create(ctx context.Context, rec *model.FuelRecord) (*model.FuelRecord, error) {
	args := m.Called(ctx, rec)
	if f, ok := args.Get(0).(func(context.Context, *model.FuelRecord) *model.FuelRecord); ok {
		return f(ctx, rec), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FuelRecord), args.Error(1)
}

func (m *MockFuelRecordRepository) FindByID(ctx context.Context, id, ownerID string) (*model.FuelRecord, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FuelRecord), args.Error(1)
}

func (m *MockFuelRecordRepository) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.FuelRecord], error) {
	args := m.Called(ctx, ownerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.FuelRecord]), args.Error(1)
}

func (m *MockFuelRecordRepository) ListByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]model.FuelRecord, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FuelRecord), args.Error(1)
}

func (m *MockFuelRecordRepository) Update(ctx context.Context, rec *model.FuelRecord) (*model.FuelRecord, error) {
	args := m.Called(ctx, rec)
	if f, ok := args.Get(0).(func(context.Context, *model.FuelRecord) *model.FuelRecord); ok {
		return f(ctx, rec), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FuelRecord), args.Error(1)
}

func (m *MockFuelRecordRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFuelRecordRepository) SumAmount(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFuelRecordRepository) SumLiters(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFuelRecordRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}
