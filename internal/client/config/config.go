package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the credkeeper CLI.
type Config struct {
	ServerEndpointAddr string
	SessionDB          string
	RequestTimeout     time.Duration
	DeviceToken        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDB = "credkeeper.db"
	c.RequestTimeout = 10 * time.Second
	c.DeviceToken = ""
}

// LoadConfig applies defaults, then the JSON file, then flags from args.
// Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
