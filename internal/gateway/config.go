package gateway

import "time"

// DefaultWebhookPath is where Telegram updates are accepted when no path is
// configured.
const DefaultWebhookPath = "/telegram/webhook"

// Config holds HTTP gateway configuration.
type Config struct {
	Bind string `yaml:"bind"`

	// WebhookPath is the route Telegram posts updates to.
	WebhookPath string `yaml:"webhook_path"`

	// SecretToken, when set, must match the X-Telegram-Bot-Api-Secret-Token
	// header of every webhook request. It is the same value passed to
	// setWebhook as secret_token.
	SecretToken string `yaml:"secret_token"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8080"
	}
	if c.WebhookPath == "" {
		c.WebhookPath = DefaultWebhookPath
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}
