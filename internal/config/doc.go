// Package config loads, normalizes, and validates modmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MODMATCH_CATALOG and OPENROUTER_API_KEY. The Config type centralizes every
// calibration knob the matcher, batch runner and CLI need so they can be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
