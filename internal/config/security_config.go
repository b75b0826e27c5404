package config

import (
	"strconv"
	"time"
)

type SecurityConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetAccessTokenSecret and GetRefreshTokenSecret are distinct on purpose: a
// leaked access secret must not let anyone mint refresh tokens.
func (Security) GetAccessTokenSecret() string {
	return GetEnv("ACCESS_TOKEN_SECRET", "")
}

func (Security) GetRefreshTokenSecret() string {
	return GetEnv("REFRESH_TOKEN_SECRET", "")
}

func (Security) GetAccessTokenTTL() time.Duration {
	return durationEnv("ACCESS_TOKEN_TTL_SECONDS", 15*time.Minute)
}

func (Security) GetRefreshTokenTTL() time.Duration {
	return durationEnv("REFRESH_TOKEN_TTL_SECONDS", 7*24*time.Hour)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
