package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overrides from flags", func(t *testing.T) {
		os.Args = []string{"testbin",
			"-a", ":9999",
			"-d", "postgres://flags/auth",
			"-s", "flag_secret",
			"-t", "2",
			"-r", "10",
		}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://flags/auth", cfg.DatabaseDSN)
		assert.Equal(t, "flag_secret", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 10*time.Minute, cfg.RefreshTokenValidityDuration)
	})

	t.Run("keeps defaults when flags absent", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 6*30*24*time.Hour, cfg.RefreshTokenValidityDuration)
	})
}
