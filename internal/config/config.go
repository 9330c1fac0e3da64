// Package config provides configuration management for the hyprsession application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d-kuro/hyprsession/pkg/models"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
)

// getConfigDir returns the configuration directory path, honouring
// XDG_CONFIG_HOME.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, "hyprsession")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return filepath.Join(".", ".config", "hyprsession")
	}
	return filepath.Join(home, ".config", "hyprsession")
}

// setDefaults registers the default value of every key.
func setDefaults() {
	viper.SetDefault("storage.sessions_dir", "~/.local/share/hyprsession/sessions")
	viper.SetDefault("storage.archive_dir", "~/.local/share/hyprsession/archived")

	viper.SetDefault("restore.delay", "1s")
	viper.SetDefault("restore.swallow_multiplier", 2.0)
	viper.SetDefault("restore.terminal", "kitty")
	viper.SetDefault("restore.switch_workspace", true)

	viper.SetDefault("archive.auto_cleanup", true)
	viper.SetDefault("archive.max_archives", 20)

	viper.SetDefault("hypr.command", "hyprctl")

	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.development", false)

	viper.SetDefault("ui.color", true)
	viper.SetDefault("ui.icons", true)
	viper.SetDefault("ui.tilde_home", true)

	viper.SetDefault("finder.preview", true)
}

// Init initializes the configuration system, creating default config if needed.
func Init() error {
	configDir := getConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigName(configName)
	viper.SetConfigType(configType)
	viper.AddConfigPath(configDir)

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			configPath := filepath.Join(configDir, configName+"."+configType)
			if err := viper.SafeWriteConfig(); err != nil {
				if err := viper.WriteConfigAs(configPath); err != nil {
					return fmt.Errorf("failed to create config file: %w", err)
				}
			}
		} else {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// Load loads and returns the current configuration.
func Load() (*models.Config, error) {
	var cfg models.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.SessionsDir = expandPath(cfg.Storage.SessionsDir)
	cfg.Storage.ArchiveDir = expandPath(cfg.Storage.ArchiveDir)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the restore and archive code cannot work with.
func Validate(cfg *models.Config) error {
	if cfg.Storage.SessionsDir == "" || cfg.Storage.ArchiveDir == "" {
		return fmt.Errorf("storage.sessions_dir and storage.archive_dir must be set")
	}
	if filepath.Clean(cfg.Storage.SessionsDir) == filepath.Clean(cfg.Storage.ArchiveDir) {
		return fmt.Errorf("storage.sessions_dir and storage.archive_dir must differ")
	}
	if cfg.Restore.Delay < 0 {
		return fmt.Errorf("restore.delay must not be negative, got %s", cfg.Restore.Delay)
	}
	if cfg.Restore.SwallowMultiplier < 1 {
		return fmt.Errorf("restore.swallow_multiplier must be at least 1, got %g", cfg.Restore.SwallowMultiplier)
	}
	if cfg.Archive.MaxArchives < 0 {
		return fmt.Errorf("archive.max_archives must not be negative, got %d", cfg.Archive.MaxArchives)
	}
	return nil
}

// expandPath expands environment variables and a leading ~/.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	return path
}

// Set sets a configuration value by key and writes the config file. A value
// that makes the configuration invalid is rejected and not written.
func Set(key string, value any) error {
	previous := viper.Get(key)
	viper.Set(key, value)
	if _, err := Load(); err != nil {
		viper.Set(key, previous)
		return err
	}
	return viper.WriteConfig()
}

// GetValue retrieves a configuration value by key.
func GetValue(key string) any {
	return viper.Get(key)
}

// AllSettings returns all configuration settings.
func AllSettings() map[string]any {
	return viper.AllSettings()
}
