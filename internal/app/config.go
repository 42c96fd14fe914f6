package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"example.com/storefront/internal/notify"
)

type Config struct {
	Env, Port       string
	DBDSN           string
	JWTSecret       string
	TokenTTL        time.Duration
	SMTP            notify.SMTPConfig
	NotifyQueueSize int
	ShutdownTimeout time.Duration
}

func (c Config) Production() bool {
	return c.Env == "prod" || c.Env == "production"
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("SMTP_PORT", "1025")
	v.SetDefault("SMTP_FROM", "orders@storefront.local")
	v.SetDefault("NOTIFY_QUEUE_SIZE", notify.DefaultQueueSize)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// LoadConfig reads application.yml (from . or ./config) when present and lets
// environment variables override every key.
func LoadConfig() (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:       v.GetString("APP_ENV"),
		Port:      v.GetString("APP_PORT"),
		DBDSN:     v.GetString("DB_DSN"),
		JWTSecret: v.GetString("JWT_SECRET"),
		TokenTTL:  v.GetDuration("TOKEN_TTL"),
		SMTP: notify.SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetString("SMTP_PORT"),
			From:     v.GetString("SMTP_FROM"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
		},
		NotifyQueueSize: v.GetInt("NOTIFY_QUEUE_SIZE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return Config{}, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}
