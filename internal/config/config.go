package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret             string `env:"JWT_SECRET,required"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"60"`
	RefreshTokenTTLDays   int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"90"`

	CreditPerRecord int `env:"CREDIT_PER_RECORD" envDefault:"100"`

	ExternalScoreURL        string `env:"EXTERNAL_SCORE_URL" envDefault:"https://api.qixin.com/APIService/creditScore/getCreditScore"`
	ExternalScoreAppKey     string `env:"EXTERNAL_SCORE_APPKEY"`
	ExternalScoreSecret     string `env:"EXTERNAL_SCORE_SECRET"`
	ExternalScoreTimeoutSec int    `env:"EXTERNAL_SCORE_TIMEOUT_SECONDS" envDefault:"5"`

	UsageLogRetentionDays int `env:"USAGE_LOG_RETENTION_DAYS" envDefault:"365"`
	AuthRateLimitPerMin   int `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"10"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}

func (c *Config) ExternalScoreTimeout() time.Duration {
	return time.Duration(c.ExternalScoreTimeoutSec) * time.Second
}

func (c *Config) UsageLogRetention() time.Duration {
	return time.Duration(c.UsageLogRetentionDays) * 24 * time.Hour
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters (generate with: openssl rand -hex 32)")
	}
	if c.CreditPerRecord <= 0 {
		return fmt.Errorf("CREDIT_PER_RECORD must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
