// Package config loads, normalizes, and validates shortforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads secrets from an optional .env file, and
// honours environment fallbacks such as PEXELS_API_KEY and OPENROUTER_API_KEY.
// The Config type centralizes every knob the daemon and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
