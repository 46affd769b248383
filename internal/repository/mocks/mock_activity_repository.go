package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"doctools/internal/model"
	"doctools/internal/repository"
)

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Record(ctx context.Context, a *model.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivityRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Activity], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Activity]), args.Error(1)
}
