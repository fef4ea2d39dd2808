// Package config resolves edrs settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the data locations.
const (
	DefaultDataDir = "$HOME/.local/share/edrs"
	DatabaseFile   = "edrs.db"
)

// ExpandPath expands a leading ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// DataDir is where uploads and the narrative cache live (data.dir).
func DataDir() string {
	dir := viper.GetString("data.dir")
	if dir == "" {
		dir = DefaultDataDir
	}
	return ExpandPath(dir)
}

// DatabasePath is the narrative cache location (database.path), defaulting
// to edrs.db inside DataDir.
func DatabasePath() string {
	if p := viper.GetString("database.path"); p != "" {
		return ExpandPath(p)
	}
	return filepath.Join(DataDir(), DatabaseFile)
}
