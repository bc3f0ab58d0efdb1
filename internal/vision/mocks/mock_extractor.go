package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fuelapi/internal/model"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, imageURL string) (*model.ExtractedData, error) {
	args := m.Called(ctx, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExtractedData), args.Error(1)
}
