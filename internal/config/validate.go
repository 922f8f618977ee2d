package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// RFC 3986 scheme grammar.
var schemePattern = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateBridge(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateJellyfin() error {
	if c.Jellyfin.URL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Jellyfin.URL)
	if err != nil {
		return fmt.Errorf("jellyfin.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("jellyfin.url must use http or https, got %q", c.Jellyfin.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("jellyfin.url is missing a host: %q", c.Jellyfin.URL)
	}
	return nil
}

func (c *Config) validateBridge() error {
	if !schemePattern.MatchString(c.Bridge.Scheme) {
		return fmt.Errorf("bridge.scheme %q is not a valid URL scheme", c.Bridge.Scheme)
	}
	if c.Bridge.PollIntervalMS < 0 {
		return errors.New("bridge.poll_interval_ms must be positive")
	}
	if c.Bridge.FrameCleanupMS < 0 {
		return errors.New("bridge.frame_cleanup_ms must be zero or positive")
	}
	switch c.Bridge.LaunchMode {
	case LaunchModeFrame, LaunchModeExec:
	default:
		return fmt.Errorf("bridge.launch_mode must be %q or %q, got %q", LaunchModeFrame, LaunchModeExec, c.Bridge.LaunchMode)
	}
	if c.Bridge.BrowserURL == "" && !c.Bridge.LaunchBrowser {
		return errors.New("bridge.browser_url must be set when bridge.launch_browser is false")
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.ReportIntervalSeconds < 0 {
		return errors.New("playback.report_interval_seconds must be positive")
	}
	if c.Playback.StartupDelaySeconds < 0 {
		return errors.New("playback.startup_delay_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
