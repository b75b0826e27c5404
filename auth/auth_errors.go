package auth

import "errors"

var (
	// EmailTakenErr reports a signup against an already registered email.
	EmailTakenErr = errors.New("email already registered")

	// InvalidCredentialsErr is returned for both an unknown email and a wrong
	// password. The single message is deliberate: login failures must not
	// reveal which half of the pair was wrong.
	InvalidCredentialsErr = errors.New("email or password incorrect")

	// RefreshRejectedErr covers every way a presented refresh token can be
	// refused: bad signature, expiry, unknown user, no active session, or a
	// fingerprint that no longer matches after rotation or logout.
	RefreshRejectedErr = errors.New("refresh token rejected")
)
