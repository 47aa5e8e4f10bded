// Package config loads YAML configuration for the cmd tools.
package config
