package config

import "strings"

type CorsConfig interface {
	GetAllowedOrigins() []string
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type Cors struct{}

var _ CorsConfig = Cors{}

// GetAllowedOrigins reads a comma-separated CORS_ORIGINS list. Browsers need
// credentials support for the token cookies, so "*" is not a usable default.
func (Cors) GetAllowedOrigins() []string {
	raw := GetEnv("CORS_ORIGINS", "http://localhost:3000")
	origins := strings.Split(raw, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func (Cors) GetAllowedMethods() []string {
	return []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
}

func (Cors) GetAllowedHeaders() []string {
	return []string{"Content-Type", "Authorization"}
}
