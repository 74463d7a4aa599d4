// Package gateway serves the HTTP side of botctl: health, Prometheus metrics
// and the Telegram webhook receiver.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Gateway owns the HTTP server. Optional parts are mounted only when
// supplied: metrics with WithMetricsHandler, the webhook with WithUpdates.
type Gateway struct {
	config    Config
	logger    *slog.Logger
	server    *http.Server
	listener  net.Listener
	counters  *Counters
	metrics   http.Handler
	updates   UpdateHandler
	startedAt time.Time
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(g *Gateway) { g.metrics = h }
}

// WithUpdates mounts the webhook receiver and hands every decoded update
// to h.
func WithUpdates(h UpdateHandler) Option {
	return func(g *Gateway) { g.updates = h }
}

// New creates a gateway. Nothing listens until Start.
func New(cfg Config, opts ...Option) *Gateway {
	cfg.defaults()
	g := &Gateway{
		config:    cfg,
		logger:    slog.New(slog.DiscardHandler),
		counters:  &Counters{},
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gateway")
	return g
}

// Counters exposes the webhook counters reported by /health.
func (g *Gateway) Counters() *Counters { return g.counters }

// Handler returns the routed handler without starting a server.
func (g *Gateway) Handler() http.Handler { return g.buildRouter() }

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}
	g.listener = ln
	g.startedAt = time.Now()

	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr reports the bound address, useful when Bind used port 0.
func (g *Gateway) Addr() string {
	if g.listener == nil {
		return g.config.Bind
	}
	return g.listener.Addr().String()
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
