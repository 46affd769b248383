package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"doctools/internal/model"
	"doctools/internal/service"
	"doctools/internal/unminify"
)

type MockPasswordService struct {
	mock.Mock
}

func (m *MockPasswordService) RemovePassword(ctx context.Context, in service.UnlockInput) (*model.ProcessedFile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessedFile), args.Error(1)
}

func (m *MockPasswordService) Download(ctx context.Context, id string) (*model.ProcessedFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessedFile), args.Error(1)
}

func (m *MockPasswordService) Exists(ctx context.Context, id string) bool {
	args := m.Called(ctx, id)
	return args.Bool(0)
}

type MockUnminifyService struct {
	mock.Mock
}

func (m *MockUnminifyService) Unminify(ctx context.Context, code, declared string) (*unminify.Result, error) {
	args := m.Called(ctx, code, declared)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unminify.Result), args.Error(1)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) List(ctx context.Context, limit, offset int) (*service.ActivityListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActivityListResult), args.Error(1)
}
