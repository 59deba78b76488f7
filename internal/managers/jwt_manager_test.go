package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager(t *testing.T) *JWTManager {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return NewJWTManager(privateKey, publicKey, []byte("link-secret"))
}

func TestIssueAndVerify(t *testing.T) {
	jwtMgr := newTestJWTManager(t)

	testCases := []struct {
		name    string
		subject string
		purpose Purpose
	}{
		{"Session", "alice", PurposeSession},
		{"VerifyEmail", "a@x.com", PurposeVerifyEmail},
		{"ResetPassword", "a@x.com", PurposeResetPassword},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := jwtMgr.Issue(tc.subject, tc.purpose, time.Hour)
			require.NoError(t, err)

			claims, err := jwtMgr.Verify(token, tc.purpose)
			require.NoError(t, err)
			assert.Equal(t, tc.subject, claims.Subject)
			assert.Equal(t, tc.purpose, claims.Purpose)
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestVerifyRejectsWrongPurpose(t *testing.T) {
	jwtMgr := newTestJWTManager(t)

	verifyToken, err := jwtMgr.Issue("a@x.com", PurposeVerifyEmail, time.Hour)
	require.NoError(t, err)

	_, err = jwtMgr.Verify(verifyToken, PurposeResetPassword)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Link tokens are signed with a different key than sessions
	_, err = jwtMgr.Verify(verifyToken, PurposeSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyReportsExpiry(t *testing.T) {
	jwtMgr := newTestJWTManager(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	jwtMgr.WithClock(func() time.Time { return issuedAt })

	token, err := jwtMgr.Issue("a@x.com", PurposeResetPassword, time.Hour)
	require.NoError(t, err)

	jwtMgr.WithClock(time.Now)
	claims, err := jwtMgr.Verify(token, PurposeResetPassword)
	assert.ErrorIs(t, err, ErrTokenExpired)
	require.NotNil(t, claims)
	assert.Equal(t, "a@x.com", claims.Subject)
}

func TestVerifyRejectsMalformedAndTamperedTokens(t *testing.T) {
	jwtMgr := newTestJWTManager(t)
	otherMgr := newTestJWTManager(t)

	foreignToken, err := otherMgr.Issue("alice", PurposeSession, time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "NonsenseToken", "a.b.c", foreignToken} {
		_, err := jwtMgr.Verify(token, PurposeSession)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokensIssuedTogetherDiffer(t *testing.T) {
	jwtMgr := newTestJWTManager(t)
	now := time.Now()
	jwtMgr.WithClock(func() time.Time { return now })

	first, err := jwtMgr.Issue("a@x.com", PurposeResetPassword, time.Hour)
	require.NoError(t, err)
	second, err := jwtMgr.Issue("a@x.com", PurposeResetPassword, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestIssueRejectsUnknownPurpose(t *testing.T) {
	_, err := newTestJWTManager(t).Issue("alice", Purpose("admin"), time.Hour)
	assert.ErrorIs(t, err, ErrUnknownPurpose)
}

func TestNewJWTManagerFromFilePersistsKeyPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")

	first, err := NewJWTManagerFromFile(path, "link-secret")
	require.NoError(t, err)
	token, err := first.Issue("alice", PurposeSession, time.Hour)
	require.NoError(t, err)

	second, err := NewJWTManagerFromFile(path, "link-secret")
	require.NoError(t, err)
	claims, err := second.Verify(token, PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestNewJWTManagerFromFileRequiresLinkSecret(t *testing.T) {
	_, err := NewJWTManagerFromFile(filepath.Join(t.TempDir(), "session.key"), "")
	assert.Error(t, err)
}
