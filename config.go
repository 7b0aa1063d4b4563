package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig is the Config read from ACCOUNTS_* environment variables.
// It also carries the settings the server binary needs for its
// database, mail transport and HTTP listener.
type EnvConfig struct {
	HTTPAddr string `env:"ACCOUNTS_HTTP_ADDR" envDefault:":8080"`
	Debug    bool   `env:"ACCOUNTS_DEBUG"     envDefault:"false"`

	DatabaseDriver string `env:"ACCOUNTS_DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"ACCOUNTS_DATABASE_DSN"    envDefault:"file:accounts.db?cache=shared"`
	UseHashid      bool   `env:"ACCOUNTS_USE_HASHID"      envDefault:"false"`

	Issuer           string        `env:"ACCOUNTS_ISSUER"            envDefault:"go-accounts"`
	ActivationSecret string        `env:"ACCOUNTS_ACTIVATION_SECRET"`
	ActivationTTL    time.Duration `env:"ACCOUNTS_ACTIVATION_TTL"    envDefault:"5m"`
	AccessSecret     string        `env:"ACCOUNTS_ACCESS_SECRET"`
	AccessTTL        time.Duration `env:"ACCOUNTS_ACCESS_TTL"        envDefault:"15m"`
	RefreshSecret    string        `env:"ACCOUNTS_REFRESH_SECRET"`
	RefreshTTL       time.Duration `env:"ACCOUNTS_REFRESH_TTL"       envDefault:"168h"`

	PhoneRegion string `env:"ACCOUNTS_PHONE_REGION" envDefault:"US"`

	// OTELEndpoint enables the OTLP trace exporter when set
	OTELEndpoint string `env:"ACCOUNTS_OTEL_ENDPOINT"`

	MailDriver   string `env:"ACCOUNTS_MAIL_DRIVER"   envDefault:"smtp"`
	MailFrom     string `env:"ACCOUNTS_MAIL_FROM"     envDefault:"no-reply@localhost"`
	SMTPHost     string `env:"ACCOUNTS_SMTP_HOST"     envDefault:"localhost"`
	SMTPPort     int    `env:"ACCOUNTS_SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"ACCOUNTS_SMTP_USERNAME"`
	SMTPPassword string `env:"ACCOUNTS_SMTP_PASSWORD"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig parses the environment into an EnvConfig and validates it
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate requires the three signing secrets to be set and distinct
func (c *EnvConfig) Validate() error {
	fields := map[string]string{}

	if c.ActivationSecret == "" {
		fields["ACCOUNTS_ACTIVATION_SECRET"] = "is required"
	}
	if c.AccessSecret == "" {
		fields["ACCOUNTS_ACCESS_SECRET"] = "is required"
	}
	if c.RefreshSecret == "" {
		fields["ACCOUNTS_REFRESH_SECRET"] = "is required"
	}

	if c.AccessSecret != "" && c.AccessSecret == c.RefreshSecret {
		fields["ACCOUNTS_REFRESH_SECRET"] = "must differ from the access secret"
	}
	if c.ActivationSecret != "" && (c.ActivationSecret == c.AccessSecret || c.ActivationSecret == c.RefreshSecret) {
		fields["ACCOUNTS_ACTIVATION_SECRET"] = "must differ from the session secrets"
	}

	switch c.MailDriver {
	case "log", "smtp":
	default:
		fields["ACCOUNTS_MAIL_DRIVER"] = "must be one of log, smtp"
	}

	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		fields["ACCOUNTS_DATABASE_DRIVER"] = "must be one of sqlite, postgres"
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}

	return nil
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

func (c *EnvConfig) GetActivationSecret() string {
	return c.ActivationSecret
}

func (c *EnvConfig) GetActivationTTL() time.Duration {
	return c.ActivationTTL
}

func (c *EnvConfig) GetAccessSecret() string {
	return c.AccessSecret
}

func (c *EnvConfig) GetAccessTTL() time.Duration {
	return c.AccessTTL
}

func (c *EnvConfig) GetRefreshSecret() string {
	return c.RefreshSecret
}

func (c *EnvConfig) GetRefreshTTL() time.Duration {
	return c.RefreshTTL
}
