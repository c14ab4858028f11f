package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDir = "mcptap"

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.yaml")
}

// DefaultDataDir returns the directory holding logs and cached tokens.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, appDir)
}

// DefaultTrafficLog returns the default relay traffic log path.
func DefaultTrafficLog() string {
	return filepath.Join(DefaultDataDir(), "traffic.log")
}

// DefaultCommandLog returns the default command metadata log path.
func DefaultCommandLog() string {
	return filepath.Join(DefaultDataDir(), "commands.log")
}

// DefaultTokenPath returns the fallback token cache used when no OS keyring
// is available.
func DefaultTokenPath() string {
	return filepath.Join(DefaultDataDir(), "token.json")
}
