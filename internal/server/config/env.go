package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the environment. A .env file in the working
// directory is loaded first when present; in production the real environment
// wins and the file is simply absent.
//
// Recognized variables:
//
//	ADDRESS            HTTP bind address
//	DATABASE_DSN       PostgreSQL DSN
//	SECRET_KEY         JWT HMAC secret
//	ACCESS_TOKEN_TTL   access-token lifetime (time.ParseDuration syntax)
//	REFRESH_TOKEN_TTL  refresh-token lifetime (time.ParseDuration syntax)
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
}
