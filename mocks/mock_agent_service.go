package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docsight/internal/domain"
	"docsight/internal/service"
)

// MockAgentService is a mock implementation of service.AgentService.
type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) Run(ctx context.Context, input service.AgentQueryInput) (*domain.AgentQueryResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentQueryResult), args.Error(1)
}

func (m *MockAgentService) ExportCSV(result *domain.AgentQueryResult) ([]byte, error) {
	args := m.Called(result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
