// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. Plain environment variables (STORAGE_PATH, ENV, ...) when no file
//     is given at all.
//
// A .env file in the working directory, if present, is loaded into the
// process environment before any of the above are consulted.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Supported values for Config.StorageDriver.
const (
	DriverSQLite = "sqlite"
	DriverGorm   = "gorm"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"SchoolManagement.db"`

	// StorageDriver picks the record store backend: "sqlite" or "gorm".
	StorageDriver string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	Console `yaml:"console"`
}

// Console holds settings for the terminal front end.
type Console struct {
	Prompt string `yaml:"prompt" env:"CONSOLE_PROMPT" env-default:"> "`
}

// Load reads the config from path, or from the environment alone when
// path is empty, and checks the values that cleanenv cannot.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
	} else {
		// Give a clear message rather than a cryptic "open: no such file".
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	switch cfg.StorageDriver {
	case DriverSQLite, DriverGorm:
	default:
		return nil, fmt.Errorf("unknown storage driver %q: want %q or %q",
			cfg.StorageDriver, DriverSQLite, DriverGorm)
	}

	if cfg.StoragePath == "" {
		return nil, errors.New("storage_path must not be empty")
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure: if this
// returns, the config is valid.
func MustLoad() *Config {
	// Missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("cannot load .env: %s", err.Error())
	}

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}
