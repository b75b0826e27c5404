package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrInvalidToken is returned by Verify for any token that fails signature,
// structure, or expiry checks. Callers must not distinguish an expired token
// from a forged one.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both access and refresh tokens. Subject
// holds the user id; Email and Role travel alongside so resource servers can
// authorize without a user lookup.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Signer signs and verifies a single class of token (access or refresh).
type Signer interface {
	Sign(userID, email, role string, ttl time.Duration) (string, error)
	Verify(raw string) (*Claims, error)
}

// HMACSigner implements Signer using symmetric HMAC-SHA256.
type HMACSigner struct {
	secret  []byte
	nowTime func() time.Time
}

var _ Signer = (*HMACSigner)(nil)

type SignerOption func(*HMACSigner)

// WithClock overrides the time source used when stamping iat and exp.
func WithClock(now func() time.Time) SignerOption {
	return func(h *HMACSigner) {
		h.nowTime = now
	}
}

// NewHMACSigner creates a new HMAC signer with the given secret.
func NewHMACSigner(secret string, opts ...SignerOption) *HMACSigner {
	h := &HMACSigner{
		secret:  []byte(secret),
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HMACSigner) Sign(userID, email, role string, ttl time.Duration) (string, error) {
	now := h.nowTime()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signed, nil
}

func (h *HMACSigner) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
