package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopstack/auth-service/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Repo used in tests and when the server
// is started without a database DSN. The mutex makes the conditional
// fingerprint updates atomic, mirroring what the SQL store gets from a
// conditional UPDATE.
type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, taken := ur.emailIds[user.Email]; taken {
		return users.ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	ur.users[stored.ID] = &stored
	ur.emailIds[stored.Email] = stored.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyUser(ur.users[id]), nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyUser(user), nil
}

func (ur *FakeUserRepo) SetRefreshFingerprint(_ context.Context, id string, fingerprint *string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.RefreshFingerprint = copyFingerprint(fingerprint)
	user.UpdatedAt = time.Now()
	return nil
}

func (ur *FakeUserRepo) RotateRefreshFingerprint(_ context.Context, id, current, next string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	if user.RefreshFingerprint == nil || *user.RefreshFingerprint != current {
		return users.ErrStaleFingerprint
	}
	user.RefreshFingerprint = &next
	user.UpdatedAt = time.Now()
	return nil
}

func (ur *FakeUserRepo) ClearRefreshFingerprint(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	if user.RefreshFingerprint == nil {
		return nil
	}
	user.RefreshFingerprint = nil
	user.UpdatedAt = time.Now()
	return nil
}

func copyUser(u *users.User) *users.User {
	c := *u
	c.RefreshFingerprint = copyFingerprint(u.RefreshFingerprint)
	return &c
}

func copyFingerprint(fp *string) *string {
	if fp == nil {
		return nil
	}
	v := *fp
	return &v
}
