// Package arbor holds application-wide defaults shared by config and the CLI.
package arbor

import (
	"os"
	"path/filepath"
)

const (
	DefaultAppName      = "arbor"
	DefaultDatabaseFile = "arbor.db"
)

// DefaultConfigPath is the per-user configuration directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", DefaultAppName)
}

// DefaultDataDir is the per-user data directory holding the document database.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", DefaultAppName)
}

// DefaultDatabasePath is the default location of the document database.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultDataDir(), DefaultDatabaseFile)
}
