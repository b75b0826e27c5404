package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/shopstack/auth-service/auth"
	"github.com/shopstack/auth-service/internal/config"
	"golang.org/x/oauth2"
)

// federatedStateCookie tracks the OIDC state parameter across the redirect.
// 120 seconds is just long enough for the round trip to the provider.
const (
	federatedStateCookie = "federated_state"
	federatedStateMaxAge = 120
)

type federatedProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func newFederatedProvider(cfg config.Config) (*federatedProvider, error) {
	provider, err := oidc.NewProvider(context.Background(), cfg.GetOidcIssuer())
	if err != nil {
		return nil, errors.Wrap(err, "[newFederatedProvider] creating OIDC provider")
	}

	return &federatedProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GetOidcClientID(),
			ClientSecret: cfg.GetOidcClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.GetOidcRedirectURL(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.GetOidcClientID()}),
	}, nil
}

// FederatedLoginHandler sends the browser to the external provider.
func (s *Server) FederatedLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(24)
		http.SetCookie(w, &http.Cookie{
			Name:     federatedStateCookie,
			Value:    state,
			Path:     RouteFederatedCallback,
			HttpOnly: true,
			Secure:   getScheme(r) == "https",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   federatedStateMaxAge,
		})
		http.Redirect(w, r, s.federated.oauth.AuthCodeURL(state), http.StatusFound)
	}
}

// FederatedCallbackHandler completes the OIDC handshake and starts a session
// for the authenticated identity. Every failure on this path is absorbed into
// a redirect to the configured fallback location; the browser arrived here
// mid-redirect and an error body would strand it.
func (s *Server) FederatedCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.completeFederatedLogin(r)
		if err != nil {
			s.logger.Warn().Err(err).Msg("federated login failed")
			http.Redirect(w, r, s.config.GetLoginFailureRedirect(), http.StatusSeeOther)
			return
		}

		s.deliverTokenPair(w, r, session.Tokens)
		http.Redirect(w, r, s.config.GetLoginSuccessRedirect(), http.StatusSeeOther)
	}
}

func (s *Server) completeFederatedLogin(r *http.Request) (*auth.Session, error) {
	if errParam := r.FormValue("error"); errParam != "" {
		return nil, errors.Errorf("provider returned %q: %s", errParam, r.FormValue("error_description"))
	}

	state := r.FormValue("state")
	code := r.FormValue("code")
	if state == "" || code == "" {
		return nil, errors.New("missing code or state parameter")
	}
	stateCookie, err := r.Cookie(federatedStateCookie)
	if err != nil || stateCookie.Value != state {
		return nil, errors.New("state parameter mismatch")
	}

	oauthToken, err := s.federated.oauth.Exchange(r.Context(), code)
	if err != nil {
		return nil, errors.Wrap(err, "exchanging authorization code")
	}
	rawIDToken, ok := oauthToken.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("token response missing id_token")
	}

	idToken, err := s.federated.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		return nil, errors.Wrap(err, "verifying id_token")
	}

	var idClaims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&idClaims); err != nil {
		return nil, errors.Wrap(err, "decoding id_token claims")
	}
	if idClaims.Email == "" {
		return nil, errors.New("id_token carries no email")
	}

	user, err := s.auth.EnsureFederatedUser(r.Context(), idClaims.Email, idClaims.Name)
	if err != nil {
		return nil, err
	}

	return s.auth.FederatedLogin(r.Context(), auth.ExternalIdentity{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	})
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
