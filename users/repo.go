package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the given key.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the email is already
	// registered. Implementations must detect this through the store's
	// uniqueness violation, not a pre-check.
	ErrEmailTaken = errors.New("email already registered")
	// ErrStaleFingerprint is returned by RotateRefreshFingerprint when the
	// stored fingerprint no longer matches the expected one; a concurrent
	// refresh or logout got there first.
	ErrStaleFingerprint = errors.New("refresh fingerprint changed concurrently")
)

// Repo is the durable store of user records, keyed by id and by unique email.
type Repo interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)

	// SetRefreshFingerprint unconditionally overwrites the stored refresh
	// fingerprint (nil clears it). Used at login and federated login, where
	// any previous session is rotated away regardless of its state.
	SetRefreshFingerprint(ctx context.Context, id string, fingerprint *string) error

	// RotateRefreshFingerprint replaces current with next only if current is
	// still the stored value. The conditional update is the serialization
	// point that keeps at most one refresh token valid per user under
	// concurrent refresh calls. Returns ErrStaleFingerprint on a miss.
	RotateRefreshFingerprint(ctx context.Context, id, current, next string) error

	// ClearRefreshFingerprint nulls the stored fingerprint if one is set.
	// Clearing an already-clear fingerprint is a successful no-op.
	ClearRefreshFingerprint(ctx context.Context, id string) error
}
