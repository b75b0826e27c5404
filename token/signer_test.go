package token_test

import (
	"testing"
	"time"

	"github.com/shopstack/auth-service/token"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef"

func TestHMACSignerRoundTrip(t *testing.T) {
	signer := token.NewHMACSigner(testSecret)

	raw, err := signer.Sign("user-1", "john.doe@example.com", "standard", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "john.doe@example.com", claims.Email)
	require.Equal(t, "standard", claims.Role)
	require.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestHMACSignerRejectsWrongSecret(t *testing.T) {
	raw, err := token.NewHMACSigner(testSecret).Sign("user-1", "a@x.com", "standard", time.Minute)
	require.NoError(t, err)

	_, err = token.NewHMACSigner("different-secret").Verify(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestHMACSignerRejectsExpiredToken(t *testing.T) {
	// Sign against a clock an hour in the past so a normal positive TTL
	// is already spent when verification runs on the real clock.
	past := func() time.Time { return time.Now().Add(-time.Hour) }
	signer := token.NewHMACSigner(testSecret, token.WithClock(past))

	raw, err := signer.Sign("user-1", "a@x.com", "standard", time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestHMACSignerRejectsGarbage(t *testing.T) {
	_, err := token.NewHMACSigner(testSecret).Verify("not.a.token")
	require.ErrorIs(t, err, token.ErrInvalidToken)
}
