package auth

import (
	"context"
	"testing"
	"time"

	"exam-grading-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key-0123456789"

func TestIssueAndVerify(t *testing.T) {
	s, err := NewSigner(testKey, time.Hour)
	require.NoError(t, err)

	tok, err := s.Issue(domain.User{ID: 42, DisplayName: "Ada", IsAdmin: true})
	require.NoError(t, err)

	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: 42, Name: "Ada", Admin: true}, id)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s, err := NewSigner(testKey, time.Minute)
	require.NoError(t, err)
	issuedAt := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issuedAt }
	tok, err := s.Issue(domain.User{ID: 1})
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	issuer, err := NewSigner("another-signing-key-987654", time.Hour)
	require.NoError(t, err)
	tok, err := issuer.Issue(domain.User{ID: 1})
	require.NoError(t, err)

	s, err := NewSigner(testKey, time.Hour)
	require.NoError(t, err)
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	s, err := NewSigner(testKey, time.Hour)
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestShortKeyRejected(t *testing.T) {
	_, err := NewSigner("short", time.Hour)
	assert.Error(t, err)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), domain.Identity{UserID: 7})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), id.UserID)
}
