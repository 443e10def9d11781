// Package config loads settings for the API server and the storefront client.
// Values come from defaults, an optional config.yaml, a .env file and the
// environment (STORE_ prefix, e.g. STORE_CLIENT_TIMEOUT). DATABASE_URL and
// JWT_SECRET are also read without the prefix.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/knpstore/sport-store/internal/logger"
)

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	// AllowReset enables POST /dev/reset-products.
	AllowReset  bool
	CORSOrigins string
	Log         logger.Config
	Client      ClientConfig
}

// ClientConfig drives the storefront client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// Source is "mock" for the synthetic catalogue or "remote" for the API.
	Source      string
	MockLatency time.Duration
	MaxPages    int
	SessionFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", "30m")
	v.SetDefault("allow_reset", false)
	v.SetDefault("cors_origins", "*")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/store.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.with_caller", false)

	v.SetDefault("client.base_url", "http://localhost:8080/api")
	v.SetDefault("client.timeout", "10s")
	v.SetDefault("client.source", "mock")
	v.SetDefault("client.mock_latency", "500ms")
	v.SetDefault("client.max_pages", 5)
	v.SetDefault("client.session_file", ".store-session.json")
}

// Load reads the configuration. A missing .env or config.yaml is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database_url", "STORE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("jwt_secret", "STORE_JWT_SECRET", "JWT_SECRET")

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Addr:        v.GetString("addr"),
		DatabaseURL: v.GetString("database_url"),
		JWTSecret:   v.GetString("jwt_secret"),
		TokenTTL:    v.GetDuration("token_ttl"),
		AllowReset:  v.GetBool("allow_reset"),
		CORSOrigins: v.GetString("cors_origins"),
		Log: logger.Config{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			FilePath:   v.GetString("log.file_path"),
			MaxSize:    v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAge:     v.GetInt("log.max_age"),
			Compress:   v.GetBool("log.compress"),
			WithCaller: v.GetBool("log.with_caller"),
		},
		Client: ClientConfig{
			BaseURL:     v.GetString("client.base_url"),
			Timeout:     v.GetDuration("client.timeout"),
			Source:      v.GetString("client.source"),
			MockLatency: v.GetDuration("client.mock_latency"),
			MaxPages:    v.GetInt("client.max_pages"),
			SessionFile: v.GetString("client.session_file"),
		},
	}
}
