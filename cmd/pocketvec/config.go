package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultKeyEnv names the environment variable read for store keys.
const DefaultKeyEnv = "POCKETVEC_KEY"

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type Config struct {
	Store    string    `yaml:"store" json:"store"`
	Quantize bool      `yaml:"quantize" json:"quantize"`
	Cipher   string    `yaml:"cipher" json:"cipher"`
	KeyEnv   string    `yaml:"key_env" json:"key_env"`
	Checksum bool      `yaml:"checksum" json:"checksum"`
	Codec    string    `yaml:"codec" json:"codec"`
	Log      LogConfig `yaml:"log" json:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Store:    "store.mvs",
		Cipher:   "xor",
		KeyEnv:   DefaultKeyEnv,
		Checksum: true,
		Codec:    "go-json",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadConfig reads path. An empty path or a missing file yields the defaults;
// fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
