package managers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Send(ctx context.Context, to, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

func TestSendVerificationMailEmbedsLink(t *testing.T) {
	transport := &mockTransport{}
	link := "http://localhost:5173/verify-email/abc.def.ghi"
	transport.On("Send", mock.Anything, "a@x.com", "Verify your email address",
		mock.MatchedBy(func(html string) bool { return assert.Contains(t, html, link) })).Return(nil)

	mailMgr := NewMailManager(transport, time.Second)
	err := mailMgr.SendVerificationMail(context.Background(), "a@x.com", "alice", link)

	require.NoError(t, err)
	transport.AssertExpectations(t)
}

func TestSendPasswordResetMailBoundsTheTransport(t *testing.T) {
	transport := &mockTransport{}
	transport.On("Send", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return hasDeadline
	}), "a@x.com", "Reset your password", mock.Anything).Return(nil)

	mailMgr := NewMailManager(transport, time.Second)
	err := mailMgr.SendPasswordResetMail(context.Background(), "a@x.com", "alice", "http://localhost/reset-password/t")

	require.NoError(t, err)
	transport.AssertExpectations(t)
}

func TestSendMailReturnsTransportErrors(t *testing.T) {
	transport := &mockTransport{}
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mailgun down"))

	mailMgr := NewMailManager(transport, time.Second)
	err := mailMgr.SendPasswordResetMail(context.Background(), "a@x.com", "alice", "http://localhost/reset-password/t")

	assert.EqualError(t, err, "mailgun down")
}
