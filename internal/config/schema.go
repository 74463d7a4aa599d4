// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for botctl.
package config

import "time"

// Defaults applied by ApplyDefaults.
const (
	DefaultAPIURL      = "https://api.telegram.org"
	DefaultTimeout     = 60 * time.Second
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultServiceName = "botctl"

	DefaultToolCallsPerMin = 60
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Token is the bot token issued by BotFather (<bot_id>:<secret>).
	Token string `yaml:"token"`

	// APIURL is the Bot API base URL. Point it at a local Bot API server
	// or a test double to leave api.telegram.org.
	APIURL string `yaml:"api_url,omitempty"`

	// Timeout bounds each HTTP exchange, media fetches included.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Journal   JournalConfig   `yaml:"journal"`
	MCP       MCPConfig       `yaml:"mcp"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// TelemetryConfig holds the optional metrics listener and trace exporter.
type TelemetryConfig struct {
	// MetricsAddr, when set, serves /metrics and /health on this address.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`

	// OTLPEndpoint, when set, exports call spans over OTLP/HTTP.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	OTLPInsecure bool   `yaml:"otlp_insecure,omitempty"`
	ServiceName  string `yaml:"service_name,omitempty"`
}

// JournalConfig enables the sqlite call journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MCPConfig guards the tools exposed by "botctl mcp".
type MCPConfig struct {
	// ToolCallsPerMin limits calls per tool over a sliding minute.
	// A negative value disables the limit.
	ToolCallsPerMin int `yaml:"tool_calls_per_min,omitempty"`

	// MediaAllowDomains restricts the hosts send_media may fetch from.
	MediaAllowDomains []string `yaml:"media_allow_domains,omitempty"`
	MediaDenyDomains  []string `yaml:"media_deny_domains,omitempty"`
}

// ApplyDefaults fills zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
	if c.MCP.ToolCallsPerMin == 0 {
		c.MCP.ToolCallsPerMin = DefaultToolCallsPerMin
	}
}
