package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flemzord/botapi/internal/config"
	"github.com/flemzord/botapi/internal/gateway"
	"github.com/flemzord/botapi/internal/journal"
	"github.com/flemzord/botapi/internal/security"
	"github.com/flemzord/botapi/internal/telemetry"
	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/spf13/cobra"
)

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	redactor *security.Redactor
	client   *botapi.Client
	options  []botapi.Option
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
	journal  *journal.Journal
	gateway  *gateway.Gateway
	out      io.Writer
}

type runFunc func(ctx context.Context, rt *runtime, args []string) error

// withRuntime builds a runtime for the duration of one command. Errors are
// flattened to redacted text: a transport error carries the request URL and
// with it the token.
func withRuntime(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()
		if err := fn(cmd.Context(), rt, args); err != nil {
			return errors.New(rt.redactor.Redact(err.Error()))
		}
		return nil
	}
}

// loadConfig resolves the configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	explicit, _ := cmd.Flags().GetString("config")
	cfg, path, err := config.LoadOrEnv(explicit)
	if err != nil {
		return nil, "", err
	}

	if v, _ := cmd.Flags().GetString("token"); v != "" {
		cfg.Token = v
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := cmd.Flags().GetString("journal"); v != "" {
		cfg.Journal.Path = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Log.Level = "debug"
	}
	return cfg, path, nil
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.Token)
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, redactor)

	rt := &runtime{
		cfg:      cfg,
		cfgPath:  path,
		logger:   logger,
		redactor: redactor,
		metrics:  telemetry.NewMetrics(),
		out:      cmd.OutOrStdout(),
	}

	rt.tracer, err = telemetry.NewTracer(ctx, telemetry.TracingConfig{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.OTLPInsecure,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, err
	}

	observers := []botapi.Observer{rt.metrics}
	if cfg.Journal.Path != "" {
		rt.journal, err = journal.Open(ctx, cfg.Journal.Path, logger)
		if err != nil {
			rt.close()
			return nil, err
		}
		observers = append(observers, rt.journal)
	}

	rt.options = []botapi.Option{
		botapi.WithBaseURL(cfg.APIURL),
		botapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		botapi.WithLogger(logger),
		botapi.WithTracerProvider(rt.tracer.Provider),
		botapi.WithObserver(observers...),
	}
	rt.client, err = rt.newClient()
	if err != nil {
		rt.close()
		return nil, err
	}

	logger.Debug("runtime ready", "config", path, "api_url", cfg.APIURL, "journal", cfg.Journal.Path)
	return rt, nil
}

// newClient builds a client sharing the runtime's transport, logging and
// observers, with extra options applied last.
func (rt *runtime) newClient(extra ...botapi.Option) (*botapi.Client, error) {
	opts := append(append([]botapi.Option{}, rt.options...), extra...)
	return botapi.NewClient(rt.cfg.Token, opts...)
}

// startGateway serves /health, /metrics and whatever extra routes opts add.
func (rt *runtime) startGateway(ctx context.Context, cfg gateway.Config, opts ...gateway.Option) error {
	opts = append([]gateway.Option{
		gateway.WithLogger(rt.logger),
		gateway.WithMetricsHandler(rt.metrics.Handler()),
	}, opts...)
	rt.gateway = gateway.New(cfg, opts...)
	return rt.gateway.Start(ctx)
}

func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if rt.gateway != nil {
		errs = append(errs, rt.gateway.Stop(ctx))
	}
	if rt.tracer != nil {
		errs = append(errs, rt.tracer.Shutdown(ctx))
	}
	if rt.journal != nil {
		errs = append(errs, rt.journal.Close())
	}
	if err := errors.Join(errs...); err != nil {
		rt.logger.Warn("shutdown incomplete", "error", err)
	}
}

// newLogger builds the slog handler named by cfg and routes it through the
// redactor so the bot token never reaches the output.
func newLogger(w io.Writer, cfg config.LogConfig, redactor *security.Redactor) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if cfg.Format == "json" {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}
	return slog.New(security.NewRedactingHandler(inner, redactor))
}
