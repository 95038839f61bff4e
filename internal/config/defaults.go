package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Chat       ChatConfig       `json:"chat"`
	Realtime   RealtimeConfig   `json:"realtime"`
	Connectors ConnectorsConfig `json:"connectors"`
}

type ChatConfig struct {
	// Model used for text conversations
	Model string `json:"model"` // Default: "gpt-4o-mini"

	// Instructions is the system prompt sent on the first turn
	Instructions string `json:"instructions"`

	// MaxTurns bounds the tool-calling loop
	MaxTurns int `json:"max_turns"` // Default: 8

	// Streaming selects the SSE path for responses
	Streaming bool `json:"streaming"` // Default: true

	// BaseURL is the completion endpoint root
	BaseURL string `json:"base_url"` // Default: "https://api.openai.com/v1"

	// RequestTimeoutSeconds bounds a single HTTP round-trip
	RequestTimeoutSeconds int `json:"request_timeout_seconds"` // Default: 120
}

type RealtimeConfig struct {
	// Model used for voice sessions
	Model string `json:"model"` // Default: "gpt-4o-realtime-preview"

	// Voice selects the synthesized voice
	Voice string `json:"voice"` // Default: "verse"
}

type ConnectorsConfig struct {
	// HackerNewsBaseURL is the Algolia HN API root
	HackerNewsBaseURL string `json:"hackernews_base_url"` // Default: "https://hn.algolia.com/api/v1"

	// GitHubEnabled toggles the git repository tools
	GitHubEnabled bool `json:"github_enabled"` // Default: true

	// MCPServers are additional tool servers to connect at startup
	MCPServers []MCPServerConfig `json:"mcp_servers"`
}

type MCPServerConfig struct {
	// Name prefixes the server's tool names in the registry
	Name string `json:"name"`

	// URL is the server's JSON-RPC HTTP endpoint
	URL string `json:"url"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chat: ChatConfig{
			Model:                 "gpt-4o-mini",
			Instructions:          "You are a helpful assistant.",
			MaxTurns:              8,
			Streaming:             true,
			BaseURL:               "https://api.openai.com/v1",
			RequestTimeoutSeconds: 120,
		},
		Realtime: RealtimeConfig{
			Model: "gpt-4o-realtime-preview",
			Voice: "verse",
		},
		Connectors: ConnectorsConfig{
			HackerNewsBaseURL: "https://hn.algolia.com/api/v1",
			GitHubEnabled:     true,
		},
	}
}
