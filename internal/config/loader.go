package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TokenEnv is consulted when the configuration carries no token.
const TokenEnv = "BOTAPI_TOKEN"

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads a YAML configuration file, expands environment variables,
// and parses it into a Config struct with defaults applied. The .env file next
// to the configuration is loaded first, then the one in the working
// directory. Neither overrides variables that are already set.
func Load(path string) (*Config, error) {
	for _, env := range []string{filepath.Join(filepath.Dir(path), ".env"), ".env"} {
		if err := loadDotEnv(env); err != nil {
			return nil, err
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv(TokenEnv)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// FromEnv builds a configuration from the environment alone, for runs
// without a configuration file. A .env file in the working directory is
// honored.
func FromEnv() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg := &Config{Token: os.Getenv(TokenEnv)}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadOrEnv loads the file Resolve picks for explicit, or falls back to
// FromEnv when no file exists.
func LoadOrEnv(explicit string) (*Config, string, error) {
	path, err := Resolve(explicit)
	if err != nil {
		if errors.Is(err, ErrNoConfig) {
			cfg, envErr := FromEnv()
			return cfg, "", envErr
		}
		return nil, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if hasDefault {
			return subs[2]
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}

// Marshal renders cfg as YAML, for `config init` and `config show`.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encoding: %w", err)
	}
	return out, nil
}
