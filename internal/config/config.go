package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Recaptcha RecaptchaConfig `mapstructure:"recaptcha"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	AdminEmails string `mapstructure:"admin_emails"`
}

type RecaptchaConfig struct {
	SecretKey string  `mapstructure:"secret_key"`
	MinScore  float64 `mapstructure:"min_score"`
	VerifyURL string  `mapstructure:"verify_url"`
}

type CORSConfig struct {
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	Backend string `mapstructure:"backend"` // memory | postgres
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments inject env directly
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("http.port", "8080")
	v.SetDefault("recaptcha.min_score", 0.5)
	v.SetDefault("recaptcha.verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("kafka.topic", "edushare.events")

	binds := map[string]string{
		"http.port":            "PORT",
		"database.url":         "DATABASE_URL",
		"auth.jwt_secret":      "AUTH_JWT_SECRET",
		"auth.admin_emails":    "ADMIN_EMAILS",
		"recaptcha.secret_key": "RECAPTCHA_SECRET_KEY",
		"recaptcha.min_score":  "RECAPTCHA_MIN_SCORE",
		"recaptcha.verify_url": "RECAPTCHA_VERIFY_URL",
		"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",
		"ratelimit.backend":    "RATE_LIMIT_BACKEND",
		"kafka.brokers":        "KAFKA_BROKERS",
		"kafka.topic":          "KAFKA_TOPIC",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks what `serve` cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is not set"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is not set"))
	}
	switch c.RateLimit.Backend {
	case "memory", "postgres":
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND must be memory or postgres, got %q", c.RateLimit.Backend))
	}
	return errors.Join(errs...)
}

func (c *Config) AdminEmails() []string {
	return SplitList(c.Auth.AdminEmails)
}

func (c *Config) AllowedOrigins() []string {
	return SplitList(c.CORS.AllowedOrigins)
}

func (c *Config) KafkaBrokers() []string {
	return SplitList(c.Kafka.Brokers)
}

// SplitList splits a comma separated env value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
