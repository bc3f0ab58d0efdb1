package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fuelapi/internal/model"
	"fuelapi/internal/service"
)

type MockFuelRecordService struct {
	mock.Mock
}

func (m *MockFuelRecordService) Ingest(ctx context.Context, req service.IngestRequest) (*service.FuelRecordResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FuelRecordResponse), args.Error(1)
}

func (m *MockFuelRecordService) List(ctx context.Context, ownerID string, page, size int) (*service.RecordPage, error) {
	args := m.Called(ctx, ownerID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordPage), args.Error(1)
}

func (m *MockFuelRecordService) ListBetween(ctx context.Context, ownerID string, from, to time.Time) ([]service.FuelRecordResponse, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.FuelRecordResponse), args.Error(1)
}

func (m *MockFuelRecordService) Get(ctx context.Context, ownerID, id string) (*service.FuelRecordResponse, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FuelRecordResponse), args.Error(1)
}

func (m *MockFuelRecordService) Update(ctx context.Context, ownerID, id string, req service.UpdateRequest) (*service.FuelRecordResponse, error) {
	args := m.Called(ctx, ownerID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FuelRecordResponse), args.Error(1)
}

func (m *MockFuelRecordService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockFuelRecordService) Summary(ctx context.Context, ownerID string) (*model.FuelSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FuelSummary), args.Error(1)
}

func (m *MockFuelRecordService) Brands() []service.BrandInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]service.BrandInfo)
}
