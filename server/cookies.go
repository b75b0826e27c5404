package server

import (
	"net/http"

	"github.com/shopstack/auth-service/token"
)

const (
	accessTokenCookie  = "ACCESS_TOKEN"
	refreshTokenCookie = "REFRESH_TOKEN"

	accessTokenMaxAge  = 900    // 15 minutes
	refreshTokenMaxAge = 604800 // 7 days
)

// deliverTokenPair hands both tokens to the caller as HttpOnly cookies. The
// refresh cookie is scoped to the refresh route so it is not replayed on
// every request.
func (s *Server) deliverTokenPair(w http.ResponseWriter, r *http.Request, pair token.Pair) {
	s.setTokenCookie(w, r, accessTokenCookie, pair.AccessToken, "/", accessTokenMaxAge)
	s.setTokenCookie(w, r, refreshTokenCookie, pair.RefreshToken, RouteRefresh, refreshTokenMaxAge)
}

// clearTokenPair expires both cookies immediately.
func (s *Server) clearTokenPair(w http.ResponseWriter, r *http.Request) {
	s.setTokenCookie(w, r, accessTokenCookie, "", "/", -1)
	s.setTokenCookie(w, r, refreshTokenCookie, "", RouteRefresh, -1)
}

func (s *Server) setTokenCookie(w http.ResponseWriter, r *http.Request, name, value, path string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
