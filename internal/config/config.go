// Package config loads and persists deckpatch's user defaults from
// ~/.deckpatch/deckpatch.yaml. Command-line flags always take precedence over
// what the file says.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.deckpatch/deckpatch.yaml.
type Config struct {
	// Backup keeps a one-time .backup sibling before in-place replacements.
	Backup bool `yaml:"backup"`
	// Recursive descends into subdirectories when scanning folders.
	Recursive bool `yaml:"recursive"`
	// Workers bounds batch scan parallelism; 0 means one per CPU.
	Workers int `yaml:"workers,omitempty"`
	// Extensions lists extra media file extensions to treat as images,
	// merged with the built-in set.
	Extensions []string `yaml:"extensions,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backup:    true,
		Recursive: true,
	}
}

// Dir returns the absolute path to ~/.deckpatch/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".deckpatch"), nil
}

// Path returns the absolute path to ~/.deckpatch/deckpatch.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "deckpatch.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// Load reads ~/.deckpatch/deckpatch.yaml. A missing file is not an error —
// the defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a config file from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to ~/.deckpatch/deckpatch.yaml, creating
// the directory if needed.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
