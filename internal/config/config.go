package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "RICELEAF"

type Config struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ModelPath    string `mapstructure:"model_path"`
	MetadataPath string `mapstructure:"metadata_path"`
	DatabaseDSN  string `mapstructure:"database_dsn"`
	HistoryLimit int    `mapstructure:"history_limit"`
	TempDir      string `mapstructure:"temp_dir"`
}

// Load reads configuration from an optional .env file, an optional
// config.yaml in the working directory, and RICELEAF_-prefixed
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("environment", "development")
	v.SetDefault("model_path", filepath.Join("models", "riceleaf.onnx"))
	v.SetDefault("metadata_path", filepath.Join("models", "riceleaf_metadata.json"))
	v.SetDefault("database_dsn", "riceleaf.db")
	v.SetDefault("history_limit", 20)
	v.SetDefault("temp_dir", filepath.Join(os.TempDir(), "riceleaf"))
}
