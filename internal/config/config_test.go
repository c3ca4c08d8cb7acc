package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Port:        "8460",
		JWTSecret:   "secure-secret-at-least-32-chars-long",
		JWTTTLHours: 168,
		DBPassword:  "secure-password",
		DBSSLMode:   "require",
		Env:         "development",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero token ttl", func(c *Config) { c.JWTTTLHours = 0 }, true},
		{"negative token ttl", func(c *Config) { c.JWTTTLHours = -1 }, true},
		{"short secret tolerated outside production", func(c *Config) { c.JWTSecret = "short" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"strong production config", func(c *Config) {}, false},
		{"default secret refused", func(c *Config) { c.JWTSecret = "your-secret-key-change-in-production" }, true},
		{"short secret refused", func(c *Config) { c.JWTSecret = "too-short" }, true},
		{"default db password refused", func(c *Config) { c.DBPassword = "password" }, true},
		{"empty db password refused", func(c *Config) { c.DBPassword = "" }, true},
	}

	for _, env := range []string{"production", "prod"} {
		for _, tt := range tests {
			t.Run(env+"/"+tt.name, func(t *testing.T) {
				c := baseConfig()
				c.Env = env
				tt.mutate(c)
				err := c.Validate()
				if tt.expectError {
					assert.Error(t, err)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	}
}
