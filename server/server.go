// Package server is the HTTP transport for the auth service. It extracts
// credentials from requests, delivers issued token pairs as cookies, and maps
// the service's error taxonomy onto HTTP statuses. Business decisions stay in
// the auth package; this layer only moves tokens in and out.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/shopstack/auth-service/auth"
	"github.com/shopstack/auth-service/internal/config"
	"github.com/shopstack/auth-service/token"
)

type Server struct {
	config  config.Config
	auth    *auth.Service
	tokens  *token.Issuer
	router  *mux.Router
	handler http.Handler
	logger  zerolog.Logger

	federated *federatedProvider // nil when OIDC is not configured
}

func New(cfg config.Config, authService *auth.Service, issuer *token.Issuer, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		config: cfg,
		auth:   authService,
		tokens: issuer,
		router: mux.NewRouter(),
		logger: logger,
	}

	if cfg.GetOidcClientID() != "" {
		provider, err := newFederatedProvider(cfg)
		if err != nil {
			return nil, err
		}
		s.federated = provider
	}

	s.initRoutes()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.GetAllowedOrigins(),
		AllowedMethods:   cfg.GetAllowedMethods(),
		AllowedHeaders:   cfg.GetAllowedHeaders(),
		AllowCredentials: true,
	})
	s.handler = corsHandler.Handler(s.requestLogger(s.router))

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.router.HandleFunc(RouteHealth, s.HealthHandler()).Methods(http.MethodGet)

	s.router.HandleFunc(RouteSignup, s.SignupHandler()).Methods(http.MethodPost)
	s.router.HandleFunc(RouteLogin, s.LoginHandler()).Methods(http.MethodPost)
	s.router.HandleFunc(RouteRefresh, s.RefreshHandler()).Methods(http.MethodPost)
	s.router.HandleFunc(RouteLogout, s.LogoutHandler()).Methods(http.MethodPost)

	s.router.Handle(RouteMe, s.RequireAuth(s.MeHandler())).Methods(http.MethodGet)

	if s.federated != nil {
		s.router.HandleFunc(RouteFederatedLogin, s.FederatedLoginHandler()).Methods(http.MethodGet)
		s.router.HandleFunc(RouteFederatedCallback, s.FederatedCallbackHandler()).Methods(http.MethodGet)
	}
}
