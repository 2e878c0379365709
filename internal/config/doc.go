// Package config provides configuration management for vscan.
// It defines scan defaults, CLI-facing options, validation, and loading
// of per-site settings from .vscan.yml configuration files.
package config
