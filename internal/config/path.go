package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default directory of the embedded store based on
// the host OS. It prefers standard locations when available and falls back to
// a dotdir in the user's home directory.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "block-feeder")
	}

	// macOS: ~/Library/Application Support/block-feeder
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "block-feeder")
	}

	// Windows: %USERPROFILE%/AppData/Local/block-feeder
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "block-feeder")
	}

	// Linux without XDG: ~/.local/share/block-feeder
	return filepath.Join(homeDir, ".local", "share", "block-feeder")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
