package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type LiveKitConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	WSURL     string `mapstructure:"ws_url"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type Config struct {
	Mode     string        `mapstructure:"mode"`
	Port     int           `mapstructure:"port"`
	Storage  string        `mapstructure:"storage"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	LiveKit  LiveKitConfig `mapstructure:"livekit"`
	Mongo    MongoConfig   `mapstructure:"mongo"`
	Auth     AuthConfig    `mapstructure:"auth"`
}

// SignerConfigured reports whether all LiveKit credentials are present.
// Absence is a startup warning and a per-request failure, never a default.
func (c *Config) SignerConfigured() bool {
	return c.LiveKit.APIKey != "" && c.LiveKit.APISecret != "" && c.LiveKit.WSURL != ""
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("storage", "mongo")
	v.SetDefault("token_ttl", "2h")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "astrocall")

	// Secrets come from the environment, not the config file.
	_ = v.BindEnv("livekit.api_key", "LK_API_KEY")
	_ = v.BindEnv("livekit.api_secret", "LK_API_SECRET")
	_ = v.BindEnv("livekit.ws_url", "LK_WS_URL")
	_ = v.BindEnv("auth.secret", "AUTH_SECRET")
	_ = v.BindEnv("auth.issuer", "AUTH_ISSUER")
	_ = v.BindEnv("mongo.uri", "MONGO_URI")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !cfg.SignerConfigured() {
		log.Warn().Str("module", "config").Msg("LiveKit env vars (LK_API_KEY, LK_API_SECRET, LK_WS_URL) are not fully set; token requests will fail")
	}
	if cfg.Auth.Secret == "" {
		log.Warn().Str("module", "config").Msg("AUTH_SECRET is not set; authenticated requests will fail")
	}

	return &cfg, nil
}
