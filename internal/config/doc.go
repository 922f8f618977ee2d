// Package config loads, normalizes, and validates jellypot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// JELLYFIN_URL and JELLYFIN_PASSWORD. The Config type centralizes every knob
// the bridge, the playback handler and the CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
