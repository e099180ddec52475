package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration, loaded from a YAML file.
type Config struct {
	// DatabasePath is the SQLite database location.
	DatabasePath string `yaml:"database_path"`

	// DotenvPath, when set, is loaded into the environment before the
	// server secret is resolved.
	DotenvPath string `yaml:"dotenv_path"`

	Backup BackupConfig `yaml:"backup"`
}

// BackupConfig holds S3 export settings.
type BackupConfig struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

// LoadConfig loads configuration from a YAML file, applying defaults for
// optional fields. A missing file is an error; use defaultConfig for the
// zero-config path.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.DatabasePath == "" {
		config.DatabasePath = defaultConfig().DatabasePath
	}
	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath: "practice.db",
	}
}
