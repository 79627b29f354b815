// Package xdg resolves XDG Base Directory paths for shipster. It falls back to the
// traditional locations when the XDG environment variables are unset and creates
// the directories with private permissions, since they hold session data.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "shipster"

// ConfigDir returns $XDG_CONFIG_HOME/shipster, falling back to ~/.config/shipster.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/shipster, falling back to ~/.local/state/shipster.
// The sqlite session store lives here by default.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(envVar, homeFallback string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeFallback)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
