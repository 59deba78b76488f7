package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockThrottleManager is a testify mock of managers.ThrottleMgr.
type MockThrottleManager struct {
	mock.Mock
}

func (m *MockThrottleManager) Allow(ctx context.Context, action, key string) (bool, error) {
	args := m.Called(ctx, action, key)
	return args.Bool(0), args.Error(1)
}
