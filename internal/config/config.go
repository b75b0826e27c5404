package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	OidcConfig
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Oidc
}

func New() Config {
	return mainConfig{}
}
