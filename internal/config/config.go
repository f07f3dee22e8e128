// Package config handles configuration loading and validation for fastymd.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"fastymd/internal/batch"
	"fastymd/internal/scanner"
	"fastymd/internal/watcher"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidJSON     ConfigErrorType = "INVALID_JSON"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidJSON:
		return fmt.Sprintf("invalid JSON in configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Default values applied by ApplyDefaults.
const (
	DefaultOutputSuffix  = ".days"
	DefaultSymlinkPolicy = scanner.SymlinkPolicySkip
)

// DefaultExtensions returns the file extensions converted when none are configured.
func DefaultExtensions() []string {
	return []string{".txt", ".csv"}
}

// Configuration holds all settings for a conversion run or watch session.
type Configuration struct {
	InputDirectories []string             `json:"inputDirectories"`
	OutputDirectory  string               `json:"outputDirectory"`
	Extensions       []string             `json:"extensions,omitempty"`
	OutputSuffix     string               `json:"outputSuffix,omitempty"`
	Strict           bool                 `json:"strict"`
	Workers          int                  `json:"workers,omitempty"`
	ChunkSize        int                  `json:"chunkSize,omitempty"`
	ScanDepth        *int                 `json:"scanDepth,omitempty"`
	SymlinkPolicy    string               `json:"symlinkPolicy,omitempty"`
	Watch            *watcher.WatchConfig `json:"watch,omitempty"`
}

// Validate checks that the configuration has all required fields.
func (c *Configuration) Validate() error {
	if len(c.InputDirectories) == 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: "inputDirectories must contain at least one directory",
		}
	}

	for i, dir := range c.InputDirectories {
		if dir == "" {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("inputDirectories[%d] cannot be empty", i),
			}
		}
	}

	if c.OutputDirectory == "" {
		return &ConfigError{
			Type:    ValidationError,
			Message: "outputDirectory cannot be empty",
		}
	}

	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("extensions[%d] must start with '.': %q", i, ext),
			}
		}
	}

	if c.Workers < 0 {
		return &ConfigError{Type: ValidationError, Message: "workers cannot be negative"}
	}
	if c.ChunkSize < 0 {
		return &ConfigError{Type: ValidationError, Message: "chunkSize cannot be negative"}
	}

	return nil
}

// ApplyDefaults fills in zero-valued optional settings.
func (c *Configuration) ApplyDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions()
	}
	if c.OutputSuffix == "" {
		c.OutputSuffix = DefaultOutputSuffix
	}
	if c.SymlinkPolicy == "" {
		c.SymlinkPolicy = DefaultSymlinkPolicy
	}
	if c.Watch == nil {
		c.Watch = watcher.DefaultWatchConfig()
	} else if len(c.Watch.IgnorePatterns) == 0 {
		c.Watch.IgnorePatterns = watcher.DefaultIgnorePatterns()
	}
}

// BatchOptions returns the worker settings for batch conversion.
func (c *Configuration) BatchOptions() batch.Options {
	return batch.Options{Workers: c.Workers, ChunkSize: c.ChunkSize}
}

// Depth returns the configured scan depth, 0 when unset.
func (c *Configuration) Depth() int {
	if c.ScanDepth == nil {
		return 0
	}
	return *c.ScanDepth
}

// HasInputDirectory checks if a directory already exists in inputDirectories.
func (c *Configuration) HasInputDirectory(dir string) bool {
	for _, d := range c.InputDirectories {
		if d == dir {
			return true
		}
	}
	return false
}

// AddInputDirectory adds a directory if it doesn't already exist.
// Returns true if the directory was added, false if it was a duplicate.
func (c *Configuration) AddInputDirectory(dir string) bool {
	if c.HasInputDirectory(dir) {
		return false
	}
	c.InputDirectories = append(c.InputDirectories, dir)
	return true
}

// Load reads and parses a configuration file from the given path.
func Load(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
			}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var config Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.ApplyDefaults()

	return &config, nil
}

// LoadOrCreate loads config if it exists, or returns an empty config with
// defaults applied if the file doesn't exist. The result is not validated.
func LoadOrCreate(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := &Configuration{InputDirectories: []string{}}
			config.ApplyDefaults()
			return config, nil
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var config Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	config.ApplyDefaults()

	return &config, nil
}

// Save serializes and writes a configuration to the given path.
func Save(config *Configuration, filePath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("failed to write configuration file: %s", err.Error()),
		}
	}

	return nil
}
