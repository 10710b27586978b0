// Package config loads and validates the tool configuration from YAML, with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root     string   `yaml:"root" validate:"required"`
		Packages []string `yaml:"packages"`
	} `yaml:"project"`
	Output struct {
		Dir          string   `yaml:"dir" validate:"required"`
		HeadingLevel int      `yaml:"heading_level" validate:"min=0,max=6"`
		Filters      []string `yaml:"filters" validate:"dive,oneof=link apilink sourcelink all upper"`
	} `yaml:"output"`
	Cache struct {
		Capacity int `yaml:"capacity" validate:"min=0"`
	} `yaml:"cache"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Output.Dir = "api"
	cfg.Output.HeadingLevel = 2
	return &cfg
}

// Load reads the YAML config at path, applies MKAPI_* environment overrides,
// and validates the result. An empty path yields the defaults, still subject
// to overrides and validation.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if root := os.Getenv("MKAPI_PROJECT_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if dir := os.Getenv("MKAPI_OUTPUT_DIR"); dir != "" {
		cfg.Output.Dir = dir
	}
	if capacity := os.Getenv("MKAPI_CACHE_CAPACITY"); capacity != "" {
		n, err := strconv.Atoi(capacity)
		if err != nil {
			return nil, fmt.Errorf("invalid MKAPI_CACHE_CAPACITY: %w", err)
		}
		cfg.Cache.Capacity = n
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
