// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file and validated using struct tags.
// Environment references in the file are expanded, with an optional .env
// file loaded beforehand.
package config
