package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the configuration file name looked up by Resolve.
const FileName = "botctl.yaml"

// ErrNoConfig is returned by Resolve when no candidate file exists.
var ErrNoConfig = errors.New("config: no configuration file found")

// Resolve picks the configuration file. An explicit path must exist;
// otherwise $XDG_CONFIG_HOME/botctl/botctl.yaml (or ~/.config/...) and then
// ./botctl.yaml are tried in that order.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return explicit, nil
	}
	for _, candidate := range Candidates() {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", ErrNoConfig
}

// Candidates lists the implicit lookup locations in priority order.
func Candidates() []string {
	var paths []string
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "botctl", FileName))
	}
	return append(paths, FileName)
}

// DefaultPath is where `config init` writes when no --config is given.
func DefaultPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, "botctl", FileName)
	}
	return FileName
}

func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
