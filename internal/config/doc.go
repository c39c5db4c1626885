// Package config loads and validates beacon's TOML configuration.
//
// Configuration drives the pieces around the hub — log format and level,
// journal location, stream buffer capacity, replay behavior — while the hub
// API itself stays configuration-free. Load starts from Default, overlays the
// config file when one exists, and validates the result, so callers always
// receive a complete, usable Config.
package config
