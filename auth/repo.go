package auth

import (
	"context"

	"github.com/shopstack/auth-service/token"
	"github.com/shopstack/auth-service/users"
)

// PasswordHasher is the memory-hard one-way hash used for account passwords
// and for refresh-token fingerprints. Verify must compare in constant time.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

// TokenIssuer mints and verifies signed token pairs. Minting has no side
// effects; persisting the refresh fingerprint stays with the Service.
type TokenIssuer interface {
	IssuePair(ctx context.Context, userID, email, role string) (*token.Pair, error)
	VerifyRefresh(raw string) (*token.Claims, error)
}

// Deps holds all collaborator dependencies for the Service.
type Deps struct {
	Users  users.Repo
	Hasher PasswordHasher
	Tokens TokenIssuer
}
