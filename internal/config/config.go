package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                  string   `mapstructure:"PORT"`
	Env                   string   `mapstructure:"ENV"`
	DatabaseURL           string   `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32    `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir         string   `mapstructure:"MIGRATIONS_DIR"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	AuthJWTSecret         string   `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer            string   `mapstructure:"AUTH_ISSUER"`
	QuestionnaireMaxItems int      `mapstructure:"QUESTIONNAIRE_MAX_ITEMS"`
	RateLimitRPS          float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst        int      `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeoutSeconds int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	BodyLimit             string   `mapstructure:"BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUTH_ISSUER", "oncopulse")
	v.SetDefault("QUESTIONNAIRE_MAX_ITEMS", 50)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("BODY_LIMIT", "1M")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("MIGRATIONS_DIR")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_JWT_SECRET")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("QUESTIONNAIRE_MAX_ITEMS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("BODY_LIMIT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// mode AUTH_JWT_SECRET must be set so that real JWT authentication is
// enforced.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthJWTSecret == "" {
		return fmt.Errorf(
			"AUTH_JWT_SECRET must be set when ENV is %q. "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if c.AuthJWTSecret != "" && len(c.AuthJWTSecret) < 32 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 characters, got %d", len(c.AuthJWTSecret))
	}
	if c.QuestionnaireMaxItems < 0 {
		return fmt.Errorf("QUESTIONNAIRE_MAX_ITEMS must not be negative, got %d", c.QuestionnaireMaxItems)
	}
	return nil
}
