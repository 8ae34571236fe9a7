package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	minSecretLength = 16
)

type IdmDbConfig struct {
	Host     string `env:"IDM_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"IDM_PG_PORT" env-default:"5432"`
	Database string `env:"IDM_PG_DATABASE" env-default:"idm_db"`
	User     string `env:"IDM_PG_USER" env-default:"idm"`
	Password string `env:"IDM_PG_PASSWORD" env-default:"pwd"`
}

func (d IdmDbConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type CsrfConfig struct {
	Secret string        `env:"CSRF_SECRET" env-default:"dev-csrf-secret-change-me"`
	TTL    time.Duration `env:"CSRF_TTL" env-default:"24h"`
	Action string        `env:"CSRF_ACTION" env-default:"checkout_login"`
}

type SessionConfig struct {
	Secret         string        `env:"SESSION_SECRET" env-default:"dev-session-secret-change-me"`
	Issuer         string        `env:"SESSION_ISSUER" env-default:"checkout-login"`
	TTL            time.Duration `env:"SESSION_TTL" env-default:"336h"`
	CookieName     string        `env:"SESSION_COOKIE_NAME" env-default:"checkout_session"`
	CookieHttpOnly bool          `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool          `env:"COOKIE_SECURE" env-default:"false"`
}

type TotpConfig struct {
	Enabled bool   `env:"TOTP_ENABLED" env-default:"true"`
	Issuer  string `env:"TOTP_ISSUER" env-default:"checkout-login"`
	Period  uint   `env:"TOTP_PERIOD" env-default:"30"`
	Skew    uint   `env:"TOTP_SKEW" env-default:"1"`
}

type CheckoutConfig struct {
	GatewayPrefix    string `env:"GATEWAY_PREFIX" env-default:"/api/checkout"`
	CheckoutPath     string `env:"CHECKOUT_PATH" env-default:"/checkout"`
	SessionPath      string `env:"SESSION_PATH" env-default:"/api/session"`
	LostPasswordURL  string `env:"LOST_PASSWORD_URL" env-default:"/my-account/lost-password"`
	SeedDemoAccounts bool   `env:"SEED_DEMO_ACCOUNTS" env-default:"true"`
}

type Config struct {
	Environment    string `env:"APP_ENV" env-default:"development"`
	Store          string `env:"CHECKOUT_STORE" env-default:"memory"`
	IdmDbConfig    IdmDbConfig
	AppConfig      app.AppConfig
	CsrfConfig     CsrfConfig
	SessionConfig  SessionConfig
	TotpConfig     TotpConfig
	CheckoutConfig CheckoutConfig
}

// Load reads the configuration from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate reports every invalid setting at once. Secrets are only checked
// outside development.
func (c Config) Validate() error {
	return Validate(
		func() ValidationErrors {
			return CollectErrors(
				RequireOneOf("CHECKOUT_STORE", c.Store, []string{StoreMemory, StorePostgres}),
				RequirePathPrefix("GATEWAY_PREFIX", c.CheckoutConfig.GatewayPrefix),
				RequirePathPrefix("CHECKOUT_PATH", c.CheckoutConfig.CheckoutPath),
				RequirePathPrefix("SESSION_PATH", c.CheckoutConfig.SessionPath),
				RequirePositive("TOTP_PERIOD", int(c.TotpConfig.Period)),
				RequirePositiveDuration("SESSION_TTL", c.SessionConfig.TTL),
				RequirePositiveDuration("CSRF_TTL", c.CsrfConfig.TTL),
			)
		},
		func() ValidationErrors {
			if c.IsDevelopment() {
				return nil
			}
			errs := CollectErrors(
				RequireSecret("CSRF_SECRET", c.CsrfConfig.Secret, minSecretLength),
				RequireSecret("SESSION_SECRET", c.SessionConfig.Secret, minSecretLength),
			)
			if c.CsrfConfig.Secret == c.SessionConfig.Secret {
				errs = append(errs, ValidationError{Field: "SESSION_SECRET", Message: "must differ from CSRF_SECRET"})
			}
			return errs
		},
	)
}
