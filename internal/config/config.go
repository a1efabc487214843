// Package config loads runtime settings from SCHNET_* environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Environment keys
const (
	KeyTolerance         = "SCHNET_TOLERANCE"
	KeyRotatePins        = "SCHNET_ROTATE_PINS"
	KeyMaxDepth          = "SCHNET_MAX_DEPTH"
	KeyStripPresentation = "SCHNET_STRIP_PRESENTATION"
	KeyLogLevel          = "SCHNET_LOG_LEVEL"
	KeyLogFormat         = "SCHNET_LOG_FORMAT"
	KeyS3Endpoint        = "SCHNET_S3_ENDPOINT"
	KeyS3Region          = "SCHNET_S3_REGION"
	KeyS3AccessKeyID     = "SCHNET_S3_ACCESS_KEY_ID"
	KeyS3SecretAccessKey = "SCHNET_S3_SECRET_ACCESS_KEY"
	KeyS3UseSSL          = "SCHNET_S3_USE_SSL"
	KeySQLitePath        = "SCHNET_SQLITE_PATH"
	KeyDatabaseURL       = "SCHNET_DATABASE_URL"
)

var envVars = []string{
	KeyTolerance,
	KeyRotatePins,
	KeyMaxDepth,
	KeyStripPresentation,
	KeyLogLevel,
	KeyLogFormat,
	KeyS3Endpoint,
	KeyS3Region,
	KeyS3AccessKeyID,
	KeyS3SecretAccessKey,
	KeyS3UseSSL,
	KeySQLitePath,
	KeyDatabaseURL,
}

type Config struct {
	values map[string]string
}

// Load reads every known key from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		values: make(map[string]string),
	}

	cfg.loadFromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap builds a Config from explicit values.
func FromMap(values map[string]string) *Config {
	cfg := &Config{values: make(map[string]string, len(values))}
	for k, v := range values {
		if v != "" {
			cfg.values[k] = v
		}
	}
	return cfg
}

func (c *Config) loadFromEnv(getenv func(string) string) {
	for _, envVar := range envVars {
		if value := getenv(envVar); value != "" {
			c.values[envVar] = value
		}
	}
}

// Set overrides a value, typically from a command-line flag.
func (c *Config) Set(key, value string) {
	c.values[key] = value
}

func (c *Config) GetString(key, defaultValue string) string {
	if value, exists := c.values[key]; exists {
		return value
	}
	return defaultValue
}

func (c *Config) GetInt(key string, defaultValue int) int {
	if value, exists := c.values[key]; exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) GetFloat(key string, defaultValue float64) float64 {
	if value, exists := c.values[key]; exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func (c *Config) GetBool(key string, defaultValue bool) bool {
	if value, exists := c.values[key]; exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// Validate rejects values that are set but unusable.
func (c *Config) Validate() error {
	if v, ok := c.values[KeyTolerance]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("%s must be a positive number, got %q", KeyTolerance, v)
		}
	}
	if v, ok := c.values[KeyMaxDepth]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", KeyMaxDepth, v)
		}
	}
	for _, key := range []string{KeyRotatePins, KeyStripPresentation, KeyS3UseSSL} {
		if v, ok := c.values[key]; ok {
			if _, err := strconv.ParseBool(strings.TrimSpace(v)); err != nil {
				return fmt.Errorf("%s must be a boolean, got %q", key, v)
			}
		}
	}
	return nil
}

// Tolerance returns the point coincidence tolerance
func (c *Config) Tolerance() float64 {
	return c.GetFloat(KeyTolerance, 0.01)
}

// RotatePins reports whether pin offsets follow component rotation
func (c *Config) RotatePins() bool {
	return c.GetBool(KeyRotatePins, false)
}

// MaxDepth returns the parser nesting limit
func (c *Config) MaxDepth() int {
	return c.GetInt(KeyMaxDepth, 512)
}

// StripPresentation reports whether display-only content is dropped
func (c *Config) StripPresentation() bool {
	return c.GetBool(KeyStripPresentation, false)
}

// GetS3Config returns the object storage settings
func (c *Config) GetS3Config() map[string]string {
	return map[string]string{
		"endpoint":          c.GetString(KeyS3Endpoint, ""),
		"region":            c.GetString(KeyS3Region, "us-east-1"),
		"access_key_id":     c.GetString(KeyS3AccessKeyID, ""),
		"secret_access_key": c.GetString(KeyS3SecretAccessKey, ""),
		"use_ssl":           strconv.FormatBool(c.GetBool(KeyS3UseSSL, true)),
	}
}
