package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	JWTSecret      string
	BadgeCap       int
	AuditQueueSize int
	StreamBuffer   int
	SSEKeepAlive   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SHIFA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Shifa API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("badge.cap", 99)
	v.SetDefault("audit.queue_size", 256)
	v.SetDefault("stream.buffer", 8)
	v.SetDefault("sse.keepalive", "30s")

	keepAlive, err := time.ParseDuration(v.GetString("sse.keepalive"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		JWTSecret:      v.GetString("jwt.secret"),
		BadgeCap:       v.GetInt("badge.cap"),
		AuditQueueSize: v.GetInt("audit.queue_size"),
		StreamBuffer:   v.GetInt("stream.buffer"),
		SSEKeepAlive:   keepAlive,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.BadgeCap <= 0 {
		cfg.BadgeCap = 99
	}
	if cfg.AuditQueueSize <= 0 {
		cfg.AuditQueueSize = 256
	}

	return cfg, nil
}
