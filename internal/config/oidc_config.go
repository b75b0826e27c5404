package config

type OidcConfig interface {
	GetOidcIssuer() string
	GetOidcClientID() string
	GetOidcClientSecret() string
	GetOidcRedirectURL() string
	GetLoginSuccessRedirect() string
	GetLoginFailureRedirect() string
}

type Oidc struct{}

var _ OidcConfig = Oidc{}

func (Oidc) GetOidcIssuer() string {
	return GetEnv("OIDC_ISSUER", "https://accounts.google.com")
}

func (Oidc) GetOidcClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Oidc) GetOidcClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

// GetOidcRedirectURL is where the provider sends the browser back to; must
// match the redirect URI registered with the provider.
func (o Oidc) GetOidcRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", EnvVars{}.GetBaseURL()+"/auth/federated/callback")
}

func (Oidc) GetLoginSuccessRedirect() string {
	return GetEnv("LOGIN_SUCCESS_REDIRECT", "/")
}

// GetLoginFailureRedirect is the fallback location for the federated login
// path, where failures become a redirect instead of an error response.
func (Oidc) GetLoginFailureRedirect() string {
	return GetEnv("LOGIN_FAILURE_REDIRECT", "/login?error=federated")
}
