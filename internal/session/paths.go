package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.chattrix.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chattrix")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// SessionPath returns where the logged-in session token is persisted.
func SessionPath() string {
	return filepath.Join(BaseDir(), "session.toml")
}

// LogPath returns the client log file path.
func LogPath() string {
	return filepath.Join(BaseDir(), "logs", "chattrix.log")
}

// EnsureDirs creates the ~/.chattrix tree with private permissions.
func EnsureDirs() error {
	for _, d := range []string{BaseDir(), filepath.Join(BaseDir(), "logs")} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
