// Package config provides configuration for the webtv backend.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	// Data sources
	PlaylistSource string // http(s) URL or local file path; optional
	GuideURL       string // "now playing" guide page; empty disables the guide
	ProxyURL       string // CORS proxy prefix the encoded guide URL is appended to

	// Server
	BindAddr string
	Port     int
	LogLevel string

	// Schedule refresh
	RefreshInterval time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:        "0.0.0.0",
		Port:            8080,
		LogLevel:        "info",
		RefreshInterval: 10 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.GuideURL != "" {
		if _, err := url.Parse(c.GuideURL); err != nil {
			return fmt.Errorf("invalid guide URL: %w", err)
		}
	}

	if c.ProxyURL != "" && c.GuideURL == "" {
		return errors.New("--proxy requires --guide")
	}

	if c.PlaylistIsURL() {
		if _, err := url.Parse(c.PlaylistSource); err != nil {
			return fmt.Errorf("invalid playlist URL: %w", err)
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.RefreshInterval < time.Minute {
		return fmt.Errorf("refresh interval must be at least 1m, got %s", c.RefreshInterval)
	}

	return nil
}

// ListenAddr returns the full listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.Port)
}

// PlaylistIsURL reports whether the playlist source is fetched over HTTP
// rather than read from disk.
func (c *Config) PlaylistIsURL() bool {
	return strings.HasPrefix(c.PlaylistSource, "http://") ||
		strings.HasPrefix(c.PlaylistSource, "https://")
}

// PlaylistIsFile reports whether the playlist source is a local file to load
// and watch.
func (c *Config) PlaylistIsFile() bool {
	return c.PlaylistSource != "" && !c.PlaylistIsURL()
}
