package mocks

import (
	"context"

	"doctools/internal/pdfunlock"

	"github.com/stretchr/testify/mock"
)

type MockCodec struct {
	mock.Mock
}

func (m *MockCodec) Unlock(ctx context.Context, payload []byte, password string) (*pdfunlock.Result, error) {
	args := m.Called(ctx, payload, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdfunlock.Result), args.Error(1)
}
