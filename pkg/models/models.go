// Package models defines the configuration structures shared by the hyprsession commands.
package models

import "time"

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"` // Session storage locations
	Restore RestoreConfig `mapstructure:"restore"` // Restore pacing and terminal
	Archive ArchiveConfig `mapstructure:"archive"` // Archive retention
	Hypr    HyprConfig    `mapstructure:"hypr"`    // Compositor control
	Log     LogConfig     `mapstructure:"log"`     // Diagnostic logging
	UI      UIConfig      `mapstructure:"ui"`      // UI-related configuration
	Finder  FinderConfig  `mapstructure:"finder"`  // Fuzzy finder configuration
}

// StorageConfig locates active and archived sessions. Both directories must
// be on the same filesystem.
type StorageConfig struct {
	SessionsDir string `mapstructure:"sessions_dir"` // Active sessions
	ArchiveDir  string `mapstructure:"archive_dir"`  // Archived sessions
}

// RestoreConfig controls how sessions are relaunched.
type RestoreConfig struct {
	Delay             time.Duration `mapstructure:"delay"`              // Wait after each launch
	SwallowMultiplier float64       `mapstructure:"swallow_multiplier"` // Delay factor for terminal+app launches
	Terminal          string        `mapstructure:"terminal"`           // Terminal class used for swallowing pairs
	SwitchWorkspace   bool          `mapstructure:"switch_workspace"`   // Focus the captured workspace first
}

// ArchiveConfig controls archive retention.
type ArchiveConfig struct {
	AutoCleanup bool `mapstructure:"auto_cleanup"` // Evict old archives after archiving
	MaxArchives int  `mapstructure:"max_archives"` // Archives kept by auto-cleanup
}

// HyprConfig locates the compositor control tool.
type HyprConfig struct {
	Command string `mapstructure:"command"` // hyprctl executable
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // debug, info, warn or error
	Development bool   `mapstructure:"development"` // Human-readable console output
}

// UIConfig contains UI-related configuration options.
type UIConfig struct {
	Color     bool `mapstructure:"color"`      // Enable colored output
	Icons     bool `mapstructure:"icons"`      // Enable icon display
	TildeHome bool `mapstructure:"tilde_home"` // Display home directory as ~
}

// FinderConfig contains fuzzy finder configuration options.
type FinderConfig struct {
	Preview bool `mapstructure:"preview"` // Enable preview window
}
