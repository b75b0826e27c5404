package fakeuserrepo_test

import (
	"context"
	"testing"

	"github.com/shopstack/auth-service/users"
	fakeuserrepo "github.com/shopstack/auth-service/users/repofake"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *users.User {
	return &users.User{
		Email:        email,
		PasswordHash: "$argon2id$hash",
		Name:         "Ann",
		Role:         users.RoleStandard,
	}
}

func TestCreateEnforcesUniqueEmail(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	ctx := context.Background()

	first := newUser("a@x.com")
	require.NoError(t, repo.Create(ctx, first))
	require.NotEmpty(t, first.ID)

	err := repo.Create(ctx, newUser("a@x.com"))
	require.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestGetReturnsCopies(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	ctx := context.Background()

	user := newUser("a@x.com")
	require.NoError(t, repo.Create(ctx, user))

	loaded, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	loaded.Name = "mutated"

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann", reloaded.Name)

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestRotateRefreshFingerprintIsConditional(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	ctx := context.Background()

	user := newUser("a@x.com")
	require.NoError(t, repo.Create(ctx, user))

	// No fingerprint stored yet: rotation has nothing to match.
	err := repo.RotateRefreshFingerprint(ctx, user.ID, "fp-1", "fp-2")
	require.ErrorIs(t, err, users.ErrStaleFingerprint)

	fp := "fp-1"
	require.NoError(t, repo.SetRefreshFingerprint(ctx, user.ID, &fp))

	require.NoError(t, repo.RotateRefreshFingerprint(ctx, user.ID, "fp-1", "fp-2"))

	// The old expected value no longer matches.
	err = repo.RotateRefreshFingerprint(ctx, user.ID, "fp-1", "fp-3")
	require.ErrorIs(t, err, users.ErrStaleFingerprint)

	loaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.RefreshFingerprint)
	require.Equal(t, "fp-2", *loaded.RefreshFingerprint)
}

func TestClearRefreshFingerprintIsIdempotent(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	ctx := context.Background()

	user := newUser("a@x.com")
	require.NoError(t, repo.Create(ctx, user))

	fp := "fp-1"
	require.NoError(t, repo.SetRefreshFingerprint(ctx, user.ID, &fp))
	require.NoError(t, repo.ClearRefreshFingerprint(ctx, user.ID))
	require.NoError(t, repo.ClearRefreshFingerprint(ctx, user.ID))

	loaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, loaded.RefreshFingerprint)

	require.ErrorIs(t, repo.ClearRefreshFingerprint(ctx, "no-such-user"), users.ErrNotFound)
}
