package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".contrastscan"

// ErrConfigNotFound is returned when the configuration file does not
// exist. Callers decide how hard to fail based on whether the path was
// explicitly specified by the user.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads document settings from a YAML file.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Documents == nil {
		cf.Documents = make(map[string]DocumentConfig)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file:
//  1. the explicit path, when given
//  2. .contrastscan in the current directory
//  3. .contrastscan in the user's home directory
//
// Returns the path found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
