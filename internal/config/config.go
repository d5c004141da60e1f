package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds the application configuration
type Config struct {
	NvmDir       string       `yaml:"nvm_dir,omitempty"` // nvm checkout to scan instead of $NVM_DIR or ~/.nvm
	UpdateConfig UpdateConfig `yaml:"update"`            // Self-update configuration
	configPath   string
}

// UpdateConfig holds settings for the update command
type UpdateConfig struct {
	Enabled     bool      `yaml:"enabled"`                // Master toggle for update functionality
	AutoCheck   bool      `yaml:"auto_check"`             // Check for updates after listing
	LastCheck   time.Time `yaml:"last_check,omitempty"`   // Last time update check was performed
	SkipVersion string    `yaml:"skip_version,omitempty"` // Version user chose to skip
	Repository  string    `yaml:"repository,omitempty"`   // owner/name of the GitHub repository publishing releases
}

// defaults leaves self-update off: there is no release repository until the user names one
func defaults(configPath string) *Config {
	return &Config{configPath: configPath}
}

// Load loads the configuration from the user's config directory
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads the configuration from configPath.
// A missing file yields the defaults.
func LoadFrom(configPath string) (*Config, error) {
	cfg := defaults(configPath)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", configPath, err)
	}

	// Editors on Windows like to prepend a UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", configPath, err)
	}

	cfg.NvmDir = strings.TrimSpace(cfg.NvmDir)
	if cfg.NvmDir != "" {
		cfg.NvmDir = expandHome(filepath.Clean(cfg.NvmDir))
	}
	cfg.UpdateConfig.Repository = strings.TrimSpace(cfg.UpdateConfig.Repository)

	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(c.configPath, data, 0644)
}

// FilePath returns where this configuration is read from and saved to
func (c *Config) FilePath() string {
	return c.configPath
}

// Path returns the path to the configuration file
// Following XDG Base Directory specification
func Path() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "nvmlsg", "config.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return filepath.Join(homeDir, ".config", "nvmlsg", "config.yaml")
}

// expandHome resolves a leading "~" against the user's home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
