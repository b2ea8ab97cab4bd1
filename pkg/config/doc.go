// Package config loads the server configuration from YAML with
// PARALLAX_* environment overrides, applies defaults, validates the
// result, and watches the file for pricing hot reloads.
package config
