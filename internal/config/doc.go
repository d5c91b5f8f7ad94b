// Package config loads, normalizes, and validates ictal configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ICTAL_DATASET environment
// fallback. The Config type replaces the module-level constants the research
// scripts carried (dataset path, minimum spike duration, subset filters,
// segmentation parameters) with one value loaded per process.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
