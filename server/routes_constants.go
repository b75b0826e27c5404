package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHealth = "/healthz"

	// Credential & session lifecycle
	RouteSignup  = "/auth/signup"
	RouteLogin   = "/auth/login"
	RouteRefresh = "/auth/refresh"
	RouteLogout  = "/auth/logout"
	RouteMe      = "/auth/me"

	// Federated login
	RouteFederatedLogin    = "/auth/federated/login"
	RouteFederatedCallback = "/auth/federated/callback"
)
