package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopstack/auth-service/auth"
	"github.com/shopstack/auth-service/users"
)

type errorResponse struct {
	Error string `json:"error"`
}

// HealthHandler reports liveness for deploy checks.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// SignupHandler registers a new user from a JSON body.
func (s *Server) SignupHandler() http.HandlerFunc {
	type signupRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if req.Email == "" || req.Password == "" || req.Name == "" {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email, password and name are required"})
			return
		}
		// Strength rules are a transport-boundary concern; auth.Signup
		// itself accepts any non-empty password.
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		user, err := s.auth.Signup(r.Context(), auth.SignupInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler authenticates credentials and delivers a token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		session, err := s.auth.Login(r.Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.deliverTokenPair(w, r, session.Tokens)
		s.writeJSON(w, http.StatusOK, session)
	}
}

// RefreshHandler rotates the session from a presented refresh token. The
// token comes from the refresh cookie, with a JSON body fallback for
// non-browser clients.
func (s *Server) RefreshHandler() http.HandlerFunc {
	type refreshRequest struct {
		RefreshToken string `json:"refresh_token"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		presented := ""
		if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
			presented = cookie.Value
		}
		if presented == "" {
			var req refreshRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
				presented = req.RefreshToken
			}
		}
		if presented == "" {
			s.writeJSON(w, http.StatusForbidden, errorResponse{Error: auth.RefreshRejectedErr.Error()})
			return
		}

		session, err := s.auth.Refresh(r.Context(), presented)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.deliverTokenPair(w, r, session.Tokens)
		s.writeJSON(w, http.StatusOK, session)
	}
}

// LogoutHandler revokes the server-side session and erases both cookies. It
// identifies the user from whichever verified token the request still
// carries; with neither, there is no session left to revoke and the cookie
// erasure alone makes the call a success.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID := s.authenticatedUserID(r); userID != "" {
			if err := s.auth.Logout(r.Context(), userID); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
		s.clearTokenPair(w, r)
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

// MeHandler returns the identity carried by the verified access token.
// Chained after RequireAuth.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{
			"id":    claims.Subject,
			"email": claims.Email,
			"role":  string(users.ParseRole(claims.Role)),
		})
	}
}

// authenticatedUserID extracts a user id from the request's access token
// (header or cookie), falling back to the refresh cookie when the access
// token has already expired.
func (s *Server) authenticatedUserID(r *http.Request) string {
	if raw := bearerToken(r); raw != "" {
		if claims, err := s.tokens.VerifyAccess(raw); err == nil {
			return claims.Subject
		}
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		if claims, err := s.tokens.VerifyAccess(cookie.Value); err == nil {
			return claims.Subject
		}
	}
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		if claims, err := s.tokens.VerifyRefresh(cookie.Value); err == nil {
			return claims.Subject
		}
	}
	return ""
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("writing response body")
	}
}

// writeError maps the auth taxonomy onto HTTP statuses. Anything outside the
// taxonomy is an internal failure: logged in full, returned as a generic 500
// so store internals never reach the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.EmailTakenErr):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.InvalidCredentialsErr):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.RefreshRejectedErr):
		s.writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("internal failure")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
