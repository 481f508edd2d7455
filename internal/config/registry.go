package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "homedash"
	configFile = "config.yaml"
)

// ErrConfigExists is returned by Write when the file exists and overwrite
// was not requested.
var ErrConfigExists = errors.New("config file already exists")

// Serialises writers within the process.
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/homedash or $HOME/.config/homedash
//   - macOS: $HOME/.config/homedash
//   - Windows: %LOCALAPPDATA%\homedash
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Write stores cfg as YAML at path, or at the default path when path is
// empty. The file is written to a temporary name and renamed into place.
func Write(path string, cfg *Config, overwrite bool) (string, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return "", fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return path, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return path, err
	}

	header := []byte("# homedash configuration\n" +
		"# Values here are overridden by HOMEDASH_* environment variables and\n" +
		"# command-line flags.\n\n")
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return path, fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return path, fmt.Errorf("failed to save config file: %w", err)
	}

	return path, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
