package config

import (
	"fmt"
	"time"
)

// ServerConfig holds configuration of the demo storefront server
type ServerConfig struct {
	Port        string
	GlitchDelay time.Duration
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig(getenv func(string) string) (ServerConfig, error) {
	port := getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	delay, err := parseMillis(getenv, "GLITCH_DELAY", 0)
	if err != nil {
		return ServerConfig{}, err
	}
	if delay < 0 {
		return ServerConfig{}, fmt.Errorf("GLITCH_DELAY must not be negative")
	}

	return ServerConfig{
		Port:        port,
		GlitchDelay: delay,
	}, nil
}
