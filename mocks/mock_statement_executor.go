package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docsight/internal/port"
)

// MockStatementExecutor is a mock implementation of port.StatementExecutor.
type MockStatementExecutor struct {
	mock.Mock
}

func (m *MockStatementExecutor) ExecuteStatement(ctx context.Context, statement, waitTimeout string) (*port.StatementResult, error) {
	args := m.Called(ctx, statement, waitTimeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StatementResult), args.Error(1)
}
