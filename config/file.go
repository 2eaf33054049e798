package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the structure of ~/.yuquemd/config.yaml.
type FileConfig struct {
	OutputDir  string            `yaml:"output_dir"`
	Encoding   string            `yaml:"encoding"`
	Cookies    string            `yaml:"cookies"`
	Proxies    map[string]string `yaml:"proxies"` // scheme -> proxy URL
	UserAgent  string            `yaml:"user_agent"`
	HistoryDSN string            `yaml:"history_dsn"`
	APIAddr    string            `yaml:"api_addr"`
	Workers    int               `yaml:"workers"`
	Preview    bool              `yaml:"preview"`
}

// DefaultPath returns the location of the user's config file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".yuquemd", "config.yaml"), nil
}

// LoadConfigFile loads configuration from ~/.yuquemd/config.yaml. Returns nil
// if the file doesn't exist (not an error). Returns error if the file exists
// but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads configuration from the given path, with the same
// missing-file semantics as LoadConfigFile.
func LoadConfigFrom(configPath string) (*FileConfig, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
