// Package poller receives updates by long-polling getUpdates.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flemzord/botapi/pkg/botapi"
)

const (
	defaultMaxErrors  = 5
	defaultErrorPause = 30 * time.Second
)

// Handler processes one update. Updates are delivered in order, one at a
// time.
type Handler interface {
	HandleUpdate(ctx context.Context, update botapi.Update) error
}

// Config tunes the polling loop.
type Config struct {
	// Timeout is the long-polling timeout in seconds sent to getUpdates.
	Timeout int
	// AllowedUpdates restricts the update types Telegram delivers.
	AllowedUpdates []string
	// Offset is the first update_id to request; 0 lets Telegram decide.
	Offset int
	// MaxErrors consecutive failures trigger a pause of ErrorPause.
	MaxErrors  int
	ErrorPause time.Duration
}

func (c *Config) defaults() {
	if c.MaxErrors <= 0 {
		c.MaxErrors = defaultMaxErrors
	}
	if c.ErrorPause <= 0 {
		c.ErrorPause = defaultErrorPause
	}
}

// Poller implements long-polling for receiving Telegram updates.
type Poller struct {
	client  *botapi.Client
	handler Handler
	logger  *slog.Logger
	config  Config
}

// New creates a Poller. A nil logger discards output.
func New(client *botapi.Client, handler Handler, logger *slog.Logger, cfg Config) *Poller {
	cfg.defaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{
		client:  client,
		handler: handler,
		logger:  logger.With("component", "poller"),
		config:  cfg,
	}
}

// Run polls until ctx is cancelled, which is not an error. It fails fast
// when Telegram reports a conflict (a webhook is set, or another poller
// runs with the same token).
func (p *Poller) Run(ctx context.Context) error {
	offset := p.config.Offset
	var consecutiveErrors int

	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := p.client.GetUpdates(ctx, p.options(offset))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			var apiErr *botapi.APIError
			if errors.As(err, &apiErr) {
				if apiErr.Code == http.StatusConflict {
					return fmt.Errorf("poller: %w", err)
				}
				if apiErr.RetryAfter > 0 {
					p.logger.Warn("polling throttled", "retry_after", apiErr.RetryAfter)
					if !sleep(ctx, time.Duration(apiErr.RetryAfter)*time.Second) {
						return nil
					}
					continue
				}
			}

			consecutiveErrors++
			p.logger.Error("polling getUpdates failed",
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)

			if consecutiveErrors >= p.config.MaxErrors {
				p.logger.Warn("polling paused after consecutive errors",
					"pause", p.config.ErrorPause,
				)
				if !sleep(ctx, p.config.ErrorPause) {
					return nil
				}
				consecutiveErrors = 0
			}
			continue
		}

		consecutiveErrors = 0

		for _, update := range updates {
			offset = update.UpdateID + 1
			if err := p.handler.HandleUpdate(ctx, update); err != nil {
				p.logger.Error("update handler failed",
					"update_id", update.UpdateID,
					"error", err,
				)
			}
		}
	}
}

func (p *Poller) options(offset int) botapi.Options {
	opts := botapi.Options{"timeout": p.config.Timeout}
	if offset != 0 {
		opts["offset"] = offset
	}
	if len(p.config.AllowedUpdates) > 0 {
		opts["allowed_updates"] = p.config.AllowedUpdates
	}
	return opts
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
