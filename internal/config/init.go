package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteDefault when a config file is present
// and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

const configHeader = "# examer configuration\n# Environment variables (EXAMER_*) override values in this file.\n\n"

// ConfigPath returns the project config file location under rootDir.
func ConfigPath(rootDir string) string {
	return filepath.Join(rootDir, DefaultOutputDir, "config.yml")
}

// WriteDefault writes Default() as YAML to .examer/config.yml under rootDir
// and returns the written path.
func WriteDefault(rootDir string, force bool) (string, error) {
	path := ConfigPath(rootDir)

	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
