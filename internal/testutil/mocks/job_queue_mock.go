package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.Queue for tests.
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueDocumentIngest(documentID string) error {
	args := m.Called(documentID)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueStatsRefresh(topic string) error {
	args := m.Called(topic)
	return args.Error(0)
}
