package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider for tests.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Response), args.Error(1)
}

func (m *MockProvider) ModelID() string {
	args := m.Called()
	return args.String(0)
}
