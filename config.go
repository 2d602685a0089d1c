package registry

import (
	jlconfig "github.com/JeremyLoy/config"
)

// Config holds the environment-driven diagnostics settings. Fields map to
// SNAKE_CASE environment variables per their tags; options passed to a
// constructor override whatever the environment said.
type Config struct {
	RegistryLogLevel  string `config:"REGISTRY_LOG_LEVEL"`
	RegistryLogPretty bool   `config:"REGISTRY_LOG_PRETTY"`
}

// GetConfig loads the registry configuration from the environment. Unset
// variables leave the defaults in place.
func GetConfig() Config {
	cfg := Config{
		RegistryLogLevel: "info",
	}
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return Config{RegistryLogLevel: "info"}
	}
	return cfg
}
