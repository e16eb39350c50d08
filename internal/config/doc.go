// Package config loads, normalizes, and validates clipdeck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CLIPDECK_API_TOKEN environment
// fallback. The Config type centralizes every knob the daemon and CLI need:
// output directories, encoder binaries and codec settings, capture defaults,
// and picture-in-picture placement.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
