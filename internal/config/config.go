package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	Provider          string `toml:"provider"`
	Model             string `toml:"model"`
	URL               string `toml:"url"`
	Token             string `toml:"token"`
	MaxPatchSizeBytes int    `toml:"max_patch_size_bytes"`
	Source            string `toml:"-"`
}

func Default() Config {
	return Config{
		Provider:          "openai",
		MaxPatchSizeBytes: 100_000,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vibe", "config.toml")
}

// Load reads path (or the default path) and applies env overrides on top.
// A missing file is not an error; defaults plus env are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	if cfg.MaxPatchSizeBytes <= 0 {
		cfg.MaxPatchSizeBytes = Default().MaxPatchSizeBytes
	}
	return cfg, nil
}

// Save writes cfg back to its Source path, creating parent directories.
func Save(cfg Config) error {
	path := cfg.Source
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("config path is empty and $HOME is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o600)
}

// ApplyOverrides applies -c key=value pairs from the command line. Keys match
// the toml field names.
func ApplyOverrides(cfg *Config, pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("override %q is not key=value", pair)
		}
		switch strings.TrimSpace(key) {
		case "provider":
			cfg.Provider = value
		case "model":
			cfg.Model = value
		case "url":
			cfg.URL = value
		case "token":
			cfg.Token = value
		case "max_patch_size_bytes":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n <= 0 {
				return fmt.Errorf("max_patch_size_bytes: %q is not a positive integer", value)
			}
			cfg.MaxPatchSizeBytes = n
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("VIBE_PROVIDER")); env != "" {
		cfg.Provider = env
	}
	if env := strings.TrimSpace(os.Getenv("VIBE_MODEL")); env != "" {
		cfg.Model = env
	}
	if env := strings.TrimSpace(os.Getenv("VIBE_BASE_URL")); env != "" {
		cfg.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("VIBE_AUTH_TOKEN")); env != "" {
		cfg.Token = env
	}
}
