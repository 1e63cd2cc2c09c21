// Package config loads client configuration from YAML files, .env
// files, and environment variables, and validates the result with
// struct tags.
//
//	var cfg client.Config
//	if err := config.Load(&cfg, config.WithConfigFile("config.yml")); err != nil { ... }
//	if err := config.Validate(&cfg); err != nil { ... }
package config
