package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMailManager is a testify mock of managers.MailMgr.
type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendVerificationMail(ctx context.Context, email, username, link string) error {
	args := m.Called(ctx, email, username, link)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(ctx context.Context, email, username, link string) error {
	args := m.Called(ctx, email, username, link)
	return args.Error(0)
}
