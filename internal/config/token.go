package config

import (
	"fmt"
	"os"
)

// ResolveToken resolves an API token based on the given source.
// Supported sources: "env" (from environment variable), "config" (from config
// value) and "none" (anonymous access, always empty).
func ResolveToken(source, configValue, envVar string) (string, error) {
	switch source {
	case "", "none":
		return "", nil
	case "env":
		return resolveFromEnv(envVar)
	case "config":
		if configValue == "" {
			return "", fmt.Errorf("token_source is 'config' but no token value provided")
		}
		return configValue, nil
	default:
		return "", fmt.Errorf("unknown token_source: %q", source)
	}
}

// ResolveToken resolves the host's token from its configured source.
func (h HostConfig) ResolveToken() (string, error) {
	return ResolveToken(h.TokenSource, h.Token, h.TokenEnv)
}

func resolveFromEnv(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val := os.Getenv(envVar)
	if val == "" {
		return "", fmt.Errorf("environment variable %s is not set", envVar)
	}
	return val, nil
}
