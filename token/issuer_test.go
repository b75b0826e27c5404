package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopstack/auth-service/token"
	"github.com/stretchr/testify/require"
)

// failingSigner always errors, for exercising partial-issuance failure.
type failingSigner struct{}

func (failingSigner) Sign(string, string, string, time.Duration) (string, error) {
	return "", errors.New("signer unavailable")
}

func (failingSigner) Verify(string) (*token.Claims, error) {
	return nil, token.ErrInvalidToken
}

func newTestIssuer(t *testing.T, opts ...token.IssuerOption) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(
		token.NewHMACSigner("access-secret"),
		token.NewHMACSigner("refresh-secret"),
		opts...,
	)
	require.NoError(t, err)
	return issuer
}

func TestNewIssuerValidatesSigners(t *testing.T) {
	_, err := token.NewIssuer(nil, token.NewHMACSigner("s"))
	require.Error(t, err)
	_, err = token.NewIssuer(token.NewHMACSigner("s"), nil)
	require.Error(t, err)
}

func TestIssuePair(t *testing.T) {
	issuer := newTestIssuer(t)

	pair, err := issuer.IssuePair(context.Background(), "user-1", "a@x.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin", access.Role)

	refresh, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", refresh.Subject)

	// The halves are keyed independently: neither verifies as the other.
	_, err = issuer.VerifyAccess(pair.RefreshToken)
	require.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = issuer.VerifyRefresh(pair.AccessToken)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestIssuePairAppliesConfiguredTTLs(t *testing.T) {
	issuer := newTestIssuer(t, token.WithTTLs(time.Minute, time.Hour))

	pair, err := issuer.IssuePair(context.Background(), "user-1", "a@x.com", "standard")
	require.NoError(t, err)

	access, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), access.ExpiresAt.Time, 5*time.Second)
	require.WithinDuration(t, time.Now().Add(time.Hour), refresh.ExpiresAt.Time, 5*time.Second)
}

func TestPartialIssuanceIsTotalFailure(t *testing.T) {
	// One signer healthy, one failing: no pair may be produced either way.
	issuer, err := token.NewIssuer(token.NewHMACSigner("access-secret"), failingSigner{})
	require.NoError(t, err)
	pair, err := issuer.IssuePair(context.Background(), "user-1", "a@x.com", "standard")
	require.Error(t, err)
	require.Nil(t, pair)

	issuer, err = token.NewIssuer(failingSigner{}, token.NewHMACSigner("refresh-secret"))
	require.NoError(t, err)
	pair, err = issuer.IssuePair(context.Background(), "user-1", "a@x.com", "standard")
	require.Error(t, err)
	require.Nil(t, pair)
}
