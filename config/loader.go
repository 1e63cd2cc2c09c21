package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides: GHKIT_RETRY_RETRIES maps
// to retry.retries.
const envPrefix = "GHKIT"

// defaultSearchPaths are the config file locations tried in order when
// no explicit path is given.
var defaultSearchPaths = []string{
	"./config.yml",
	"./config/config.yml",
}

// Options controls loading.
type Options struct {
	// ConfigFile is an explicit YAML file path. When empty, the default
	// search paths are tried and a missing file is not an error.
	ConfigFile string
	// EnvFile is an explicit .env path. When empty, ./.env is loaded if
	// present.
	EnvFile string
}

// Option is a functional option for Load.
type Option func(*Options)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// Load populates cfg from, in increasing precedence: the YAML config
// file, the .env file, and process environment variables.
func Load(cfg any, opts ...Option) error {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if err := loadEnvFile(o.EnvFile); err != nil {
		return err
	}

	v := viper.New()
	bindEnvOverrides(v)

	if file := resolveConfigFile(o.ConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: reading %s: %w", file, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	return nil
}

func resolveConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, path := range defaultSearchPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func loadEnvFile(explicit string) error {
	path := explicit
	if path == "" {
		if !fileExists("./.env") {
			return nil
		}
		path = "./.env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: loading env file %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// bindEnvOverrides maps GHKIT_* environment variables onto viper keys.
// Underscores are ambiguous between nesting and multi-word field names
// (GHKIT_RETRY_BASE_DELAY could be retry.base.delay or
// retry.base_delay), so every split variant is set; unmarshalling only
// picks up the ones that match struct fields.
func bindEnvOverrides(v *viper.Viper) {
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, envPrefix+"_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, envPrefix+"_"))
		for _, variant := range keyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// keyVariants returns every way of reading underscores as nesting:
// "retry_base_delay" -> retry_base_delay, retry.base.delay,
// retry.base_delay, retry_base.delay.
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	if len(parts) == 1 {
		return []string{key}
	}

	variants := []string{key, strings.ReplaceAll(key, "_", ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants,
			strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"),
			strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."),
		)
	}
	return variants
}
