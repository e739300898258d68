package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"ENV"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	LogFile                 string        `mapstructure:"LOG_FILE"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	TokenTTL                time.Duration `mapstructure:"TOKEN_TTL"`
	FirebaseCredentialsPath string        `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	PostgresURL             string        `mapstructure:"POSTGRES_URL"`
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DATABASE"`
	RedisAddr               string        `mapstructure:"REDIS_ADDR"`
	RedisPassword           string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                 int           `mapstructure:"REDIS_DB"`
	UnreadCacheTTL          time.Duration `mapstructure:"UNREAD_CACHE_TTL"`
	StoryTTL                time.Duration `mapstructure:"STORY_TTL"`
	FollowerBatchSize       int           `mapstructure:"FOLLOWER_BATCH_SIZE"`
	MetricsEnabled          bool          `mapstructure:"METRICS_ENABLED"`
}

var defaults = map[string]interface{}{
	"PORT":                      "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"LOG_FILE":                  "",
	"JWT_SECRET":                "",
	"TOKEN_TTL":                 "72h",
	"FIREBASE_CREDENTIALS_PATH": "",
	"POSTGRES_URL":              "",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "futuremedia",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"UNREAD_CACHE_TTL":          "10m",
	"STORY_TTL":                 "24h",
	"FOLLOWER_BATCH_SIZE":       500,
	"METRICS_ENABLED":           true,
}

// Load reads .env (when present) into the environment and decodes the environment into a
// Config. Optional backends stay disabled while their URL is empty.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.PostgresURL == "" {
		return fmt.Errorf("POSTGRES_URL is not set")
	}
	if c.JWTSecret == "" {
		if c.Env == "production" {
			return fmt.Errorf("JWT_SECRET is not set")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
