// Package auth implements the credential and session lifecycle: signup,
// password login, refresh-token rotation, logout, and federated login. The
// Service is stateless between calls; all session state is the per-user
// refresh fingerprint held by the user store.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/shopstack/auth-service/token"
	"github.com/shopstack/auth-service/users"
)

// Session is the result of any operation that authenticates a user: the
// sanitized user record plus a freshly minted token pair.
type Session struct {
	User   users.PublicUser `json:"user"`
	Tokens token.Pair       `json:"tokens"`
}

// Service orchestrates the collaborators and owns the refresh-token rotation
// protocol. It decides when a presented refresh token is accepted; delivery
// of tokens to the caller belongs to the transport layer.
type Service struct {
	deps Deps
}

// NewService initializes a Service and validates its required dependencies.
func NewService(deps Deps) (*Service, error) {
	if deps.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if deps.Hasher == nil {
		return nil, errors.New("[NewService] Hasher is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("[NewService] Tokens issuer is required")
	}
	return &Service{deps: deps}, nil
}

// SignupInput contains the data needed to register a new user.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Signup registers a new user. The plaintext password is hashed before it
// reaches the store and is never logged. A duplicate email surfaces as
// EmailTakenErr, detected through the store's uniqueness violation rather
// than a lookup, so there is no window between check and insert.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*users.PublicUser, error) {
	hash, err := s.deps.Hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Signup] hashing password")
	}

	user := &users.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         users.RoleStandard,
	}
	if err := s.deps.Users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, EmailTakenErr
		}
		return nil, errors.Wrap(err, "[Service.Signup] creating user")
	}

	public := user.Public()
	return &public, nil
}

// LoginInput contains the credentials presented at login.
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates the credentials and starts a new session, rotating away
// any refresh token the user previously held. Unknown email and wrong
// password fail identically with InvalidCredentialsErr.
func (s *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	user, err := s.deps.Users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, InvalidCredentialsErr
		}
		return nil, errors.Wrap(err, "[Service.Login] looking up user")
	}

	match, err := s.deps.Hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] verifying password")
	}
	if !match {
		return nil, InvalidCredentialsErr
	}

	return s.startSession(ctx, user)
}

// Refresh validates a presented refresh token against the stored fingerprint
// and, on success, rotates to a brand-new pair. The previous token becomes
// permanently unusable. A refresh racing another refresh or a logout loses the
// conditional update and fails with RefreshRejectedErr; the caller must log
// in again.
func (s *Service) Refresh(ctx context.Context, presented string) (*Session, error) {
	claims, err := s.deps.Tokens.VerifyRefresh(presented)
	if err != nil {
		return nil, RefreshRejectedErr
	}

	user, err := s.deps.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, RefreshRejectedErr
		}
		return nil, errors.Wrap(err, "[Service.Refresh] loading user")
	}
	if user.RefreshFingerprint == nil {
		return nil, RefreshRejectedErr
	}

	current := *user.RefreshFingerprint
	match, err := s.deps.Hasher.Verify(presented, current)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] comparing fingerprint")
	}
	if !match {
		return nil, RefreshRejectedErr
	}

	pair, err := s.deps.Tokens.IssuePair(ctx, user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] issuing token pair")
	}
	next, err := s.deps.Hasher.Hash(pair.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] fingerprinting refresh token")
	}

	// Conditional on the fingerprint still being the one we just verified:
	// two concurrent refreshes with the same token cannot both win.
	if err := s.deps.Users.RotateRefreshFingerprint(ctx, user.ID, current, next); err != nil {
		if errors.Is(err, users.ErrStaleFingerprint) || errors.Is(err, users.ErrNotFound) {
			return nil, RefreshRejectedErr
		}
		return nil, errors.Wrap(err, "[Service.Refresh] rotating fingerprint")
	}

	return &Session{User: user.Public(), Tokens: *pair}, nil
}

// Logout clears the user's stored refresh fingerprint, if one is set. Logging
// out while already logged out is a successful no-op.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.deps.Users.ClearRefreshFingerprint(ctx, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "[Service.Logout] clearing fingerprint")
	}
	return nil
}

// ExternalIdentity is a user identity already authenticated by a federated
// provider. The handshake itself happens in the transport layer; by the time
// it reaches the Service it is trusted.
type ExternalIdentity struct {
	ID    string
	Email string
	Role  users.Role
}

// FederatedLogin starts a session for an externally authenticated identity,
// rotating the stored fingerprint exactly as Login does. Errors propagate to
// the caller, which absorbs them into a fallback redirect rather than an
// error response.
func (s *Service) FederatedLogin(ctx context.Context, identity ExternalIdentity) (*Session, error) {
	user, err := s.deps.Users.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.FederatedLogin] loading user")
	}
	return s.startSession(ctx, user)
}

// EnsureFederatedUser returns the user for a federated email, provisioning a
// record on first login. Provisioned users get an unguessable random password
// so the credential login path stays closed until they set one.
func (s *Service) EnsureFederatedUser(ctx context.Context, email, name string) (*users.User, error) {
	user, err := s.deps.Users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.EnsureFederatedUser] looking up user")
	}

	hash, err := s.deps.Hasher.Hash(randomSecret())
	if err != nil {
		return nil, errors.Wrap(err, "[Service.EnsureFederatedUser] hashing placeholder password")
	}
	user = &users.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         users.RoleStandard,
	}
	if err := s.deps.Users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			// Raced with another first login for the same email.
			return s.deps.Users.GetByEmail(ctx, email)
		}
		return nil, errors.Wrap(err, "[Service.EnsureFederatedUser] creating user")
	}
	return user, nil
}

// startSession mints a pair and commits its fingerprint as the session of
// record, overwriting whatever was stored before. This is the rotation point
// shared by login and federated login.
func (s *Service) startSession(ctx context.Context, user *users.User) (*Session, error) {
	pair, err := s.deps.Tokens.IssuePair(ctx, user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.startSession] issuing token pair")
	}

	fingerprint, err := s.deps.Hasher.Hash(pair.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.startSession] fingerprinting refresh token")
	}
	if err := s.deps.Users.SetRefreshFingerprint(ctx, user.ID, &fingerprint); err != nil {
		return nil, errors.Wrap(err, "[Service.startSession] storing fingerprint")
	}

	return &Session{User: user.Public(), Tokens: *pair}, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
