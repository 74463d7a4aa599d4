package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// MaxTimeout caps the per-request timeout.
const MaxTimeout = 10 * time.Minute

// Validate checks the structural validity of a Config and reports every
// problem at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	switch {
	case cfg.Token == "":
		errs = append(errs, fmt.Errorf("config: token is required (set it in the file or %s)", TokenEnv))
	case !tokenPattern.MatchString(cfg.Token):
		errs = append(errs, errors.New("config: token format invalid (expected <bot_id>:<hash>)"))
	}

	if cfg.APIURL != "" {
		u, err := url.Parse(cfg.APIURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("config: api_url: %w", err))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, fmt.Errorf("config: api_url scheme %q not supported (use http or https)", u.Scheme))
		case u.Host == "":
			errs = append(errs, errors.New("config: api_url has no host"))
		}
	}

	if cfg.Timeout < 0 || cfg.Timeout > MaxTimeout {
		errs = append(errs, fmt.Errorf("config: timeout %s out of range (0..%s)", cfg.Timeout, MaxTimeout))
	}

	if cfg.Log.Level != "" && !slices.Contains(logLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("config: log.level %q unknown (want one of %v)", cfg.Log.Level, logLevels))
	}
	if cfg.Log.Format != "" && !slices.Contains(logFormats, cfg.Log.Format) {
		errs = append(errs, fmt.Errorf("config: log.format %q unknown (want one of %v)", cfg.Log.Format, logFormats))
	}

	if cfg.Telemetry.OTLPEndpoint != "" {
		if _, err := url.Parse(cfg.Telemetry.OTLPEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("config: telemetry.otlp_endpoint: %w", err))
		}
	}

	for _, d := range slices.Concat(cfg.MCP.MediaAllowDomains, cfg.MCP.MediaDenyDomains) {
		if strings.TrimSpace(d) == "" || strings.Contains(d, "/") {
			errs = append(errs, fmt.Errorf("config: mcp media domain %q must be a bare host name", d))
		}
	}

	return errors.Join(errs...)
}
