// Package profile manages the on-disk layout under ~/.blast: one
// directory per named profile holding the snapshot database, logs and the
// writer lock.
package profile

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

const DefaultName = "main"

// BaseDir returns ~/.blast.
func BaseDir() string {
	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".blast")
}

// Dir returns the directory for a named profile.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// DBPath returns the snapshot database path for a profile.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "blast.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path for a profile.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "blastd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with owner-only permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
