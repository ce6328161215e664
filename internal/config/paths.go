package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory (~/.taskmate).
// It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskmate"), nil
}

// GetStateDir returns the directory used for crash logs and other local state.
// Resolution order (first match wins):
// 1. Explicit config via "state.dir"
// 2. XDG_STATE_HOME/taskmate
// 3. ~/.taskmate
// 4. ./.taskmate
func GetStateDir() string {
	if dir := viper.GetString("state.dir"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskmate")
	}
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return ".taskmate"
	}
	return dir
}
