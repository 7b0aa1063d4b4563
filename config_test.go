package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-accounts"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("ACCOUNTS_ACTIVATION_SECRET", "activation")
	t.Setenv("ACCOUNTS_ACCESS_SECRET", "access")
	t.Setenv("ACCOUNTS_REFRESH_SECRET", "refresh")
}

func TestLoadConfigDefaults(t *testing.T) {
	setSecrets(t)

	cfg, err := auth.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "go-accounts", cfg.GetIssuer())
	assert.Equal(t, 5*time.Minute, cfg.GetActivationTTL())
	assert.Equal(t, 15*time.Minute, cfg.GetAccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.GetRefreshTTL())
	assert.Equal(t, "US", cfg.PhoneRegion)
	assert.Equal(t, "smtp", cfg.MailDriver)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.OTELEndpoint)
	assert.False(t, cfg.UseHashid)
	assert.Equal(t, "activation", cfg.GetActivationSecret())
	assert.Equal(t, "access", cfg.GetAccessSecret())
	assert.Equal(t, "refresh", cfg.GetRefreshSecret())
}

func TestLoadConfigOverrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("ACCOUNTS_ACTIVATION_TTL", "10m")
	t.Setenv("ACCOUNTS_DATABASE_DRIVER", "postgres")
	t.Setenv("ACCOUNTS_MAIL_DRIVER", "log")
	t.Setenv("ACCOUNTS_USE_HASHID", "true")
	t.Setenv("ACCOUNTS_OTEL_ENDPOINT", "http://collector:4318")

	cfg, err := auth.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.ActivationTTL)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "log", cfg.MailDriver)
	assert.True(t, cfg.UseHashid)
	assert.Equal(t, "http://collector:4318", cfg.OTELEndpoint)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	setSecrets(t)
	t.Setenv("ACCOUNTS_ACCESS_TTL", "soon")

	_, err := auth.LoadConfig()
	assert.Error(t, err)
}

func TestEnvConfigValidate(t *testing.T) {
	valid := func() *auth.EnvConfig {
		return &auth.EnvConfig{
			DatabaseDriver:   "sqlite",
			MailDriver:       "log",
			ActivationSecret: "activation",
			AccessSecret:     "access",
			RefreshSecret:    "refresh",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *auth.EnvConfig)
		field  string
	}{
		{"missing activation secret", func(c *auth.EnvConfig) { c.ActivationSecret = "" }, "ACCOUNTS_ACTIVATION_SECRET"},
		{"missing access secret", func(c *auth.EnvConfig) { c.AccessSecret = "" }, "ACCOUNTS_ACCESS_SECRET"},
		{"missing refresh secret", func(c *auth.EnvConfig) { c.RefreshSecret = "" }, "ACCOUNTS_REFRESH_SECRET"},
		{"shared session secret", func(c *auth.EnvConfig) { c.RefreshSecret = c.AccessSecret }, "ACCOUNTS_REFRESH_SECRET"},
		{"activation reuses access", func(c *auth.EnvConfig) { c.ActivationSecret = c.AccessSecret }, "ACCOUNTS_ACTIVATION_SECRET"},
		{"unknown mail driver", func(c *auth.EnvConfig) { c.MailDriver = "pigeon" }, "ACCOUNTS_MAIL_DRIVER"},
		{"unknown database", func(c *auth.EnvConfig) { c.DatabaseDriver = "mysql" }, "ACCOUNTS_DATABASE_DRIVER"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, auth.IsValidationError(err))
			assert.Contains(t, fieldErrors(t, err), tt.field)
		})
	}
}
