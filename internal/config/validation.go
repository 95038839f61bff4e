package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Chat.Model == "" {
		errs = append(errs, "chat.model must not be empty")
	}
	if c.Chat.MaxTurns < 1 {
		errs = append(errs, "chat.max_turns must be >= 1")
	}
	if c.Chat.BaseURL == "" {
		errs = append(errs, "chat.base_url must not be empty")
	}
	if c.Chat.RequestTimeoutSeconds < 1 {
		errs = append(errs, "chat.request_timeout_seconds must be >= 1")
	}

	if c.Realtime.Model == "" {
		errs = append(errs, "realtime.model must not be empty")
	}

	if c.Connectors.HackerNewsBaseURL == "" {
		errs = append(errs, "connectors.hackernews_base_url must not be empty")
	}
	for i, server := range c.Connectors.MCPServers {
		if server.Name == "" {
			errs = append(errs, fmt.Sprintf("connectors.mcp_servers[%d].name must not be empty", i))
		}
		if server.URL == "" {
			errs = append(errs, fmt.Sprintf("connectors.mcp_servers[%d].url must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
