package token

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Default lifetimes of the two halves of a pair.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Pair bundles a short-lived access token and a long-lived refresh token.
// Pairs are never persisted; the server keeps only a fingerprint of the
// refresh token.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Issuer mints token pairs. Minting has no side effects: committing the
// refresh token as the session of record (storing its fingerprint) is the
// caller's responsibility.
type Issuer struct {
	access     Signer
	refresh    Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// IssuerOption modifies an Issuer during construction.
type IssuerOption func(*Issuer)

// WithTTLs overrides the default access and refresh lifetimes.
func WithTTLs(accessTTL, refreshTTL time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTTL = accessTTL
		i.refreshTTL = refreshTTL
	}
}

// NewIssuer creates an Issuer from two independently keyed signers.
func NewIssuer(access, refresh Signer, options ...IssuerOption) (*Issuer, error) {
	if access == nil {
		return nil, errors.New("[NewIssuer] access signer is required")
	}
	if refresh == nil {
		return nil, errors.New("[NewIssuer] refresh signer is required")
	}

	issuer := &Issuer{
		access:     access,
		refresh:    refresh,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
	}
	for _, opt := range options {
		opt(issuer)
	}
	return issuer, nil
}

// IssuePair signs the access and refresh tokens concurrently. The two signing
// calls are independent, but a pair only exists when both succeed: one signed
// and one failed is a failure of the whole operation.
func (i *Issuer) IssuePair(ctx context.Context, userID, email, role string) (*Pair, error) {
	pair := &Pair{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		signed, err := i.access.Sign(userID, email, role, i.accessTTL)
		if err != nil {
			return errors.Wrap(err, "[Issuer.IssuePair] access token")
		}
		pair.AccessToken = signed
		return nil
	})
	g.Go(func() error {
		signed, err := i.refresh.Sign(userID, email, role, i.refreshTTL)
		if err != nil {
			return errors.Wrap(err, "[Issuer.IssuePair] refresh token")
		}
		pair.RefreshToken = signed
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pair, nil
}

// VerifyAccess validates an access token and returns its claims.
func (i *Issuer) VerifyAccess(raw string) (*Claims, error) {
	return i.access.Verify(raw)
}

// VerifyRefresh validates a refresh token's signature and expiry. Fingerprint
// matching against the stored session is a separate, later step.
func (i *Issuer) VerifyRefresh(raw string) (*Claims, error) {
	return i.refresh.Verify(raw)
}
