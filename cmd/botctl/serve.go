package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/flemzord/botapi/internal/gateway"
	"github.com/flemzord/botapi/internal/poller"
	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive updates by webhook and print them as JSON lines",
		Long: `Serve /health, /metrics and a Telegram webhook endpoint. Each update is
written to stdout as one JSON object per line.

With --set-webhook the public URL is registered with Telegram on startup
(with the --secret token) and removed again on exit.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().String("bind", "127.0.0.1:8080", "Listen address")
	cmd.Flags().String("path", gateway.DefaultWebhookPath, "Webhook route")
	cmd.Flags().String("secret", "", "Expected X-Telegram-Bot-Api-Secret-Token")
	cmd.Flags().String("set-webhook", "", "Public URL to register with setWebhook")

	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
		bind, _ := cmd.Flags().GetString("bind")
		path, _ := cmd.Flags().GetString("path")
		secret, _ := cmd.Flags().GetString("secret")
		public, _ := cmd.Flags().GetString("set-webhook")
		if secret != "" {
			rt.redactor.AddLiteral(secret)
		}

		printer := newUpdatePrinter(rt.out)
		err := rt.startGateway(ctx, gateway.Config{
			Bind:        bind,
			WebhookPath: path,
			SecretToken: secret,
		}, gateway.WithUpdates(printer))
		if err != nil {
			return err
		}

		if public != "" {
			var opts botapi.Options
			if secret != "" {
				opts = botapi.Options{"secret_token": secret}
			}
			if err := rt.client.SetWebhook(ctx, public, opts); err != nil {
				return err
			}
			rt.logger.Info("webhook registered", "url", public)
			defer func() {
				// ctx is already cancelled here.
				cleanup, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := rt.client.DeleteWebhook(cleanup); err != nil {
					rt.logger.Warn("webhook removal failed", "error", err)
				}
			}()
		}

		rt.logger.Info("serving updates", "addr", rt.gateway.Addr(), "path", path)
		<-ctx.Done()
		return nil
	})
	return cmd
}

// updatePrinter writes each update as a JSON line. Webhook requests may
// arrive concurrently.
type updatePrinter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newUpdatePrinter(w io.Writer) *updatePrinter {
	return &updatePrinter{enc: json.NewEncoder(w)}
}

// HandleUpdate implements gateway.UpdateHandler.
func (p *updatePrinter) HandleUpdate(_ context.Context, u botapi.Update) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(u)
}

func pollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Long-poll getUpdates and print each update as a JSON line",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Int("timeout", 30, "Long polling timeout in seconds")
	cmd.Flags().StringSlice("allowed", nil, "Update types to receive (message, callback_query, ...)")
	cmd.Flags().Int("offset", 0, "First update_id to request")

	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
		timeout, _ := cmd.Flags().GetInt("timeout")
		allowed, _ := cmd.Flags().GetStringSlice("allowed")
		offset, _ := cmd.Flags().GetInt("offset")

		// The HTTP timeout must outlast the long poll.
		if rt.cfg.Timeout > 0 && time.Duration(timeout)*time.Second >= rt.cfg.Timeout {
			return fmt.Errorf("poll: --timeout %ds must be shorter than the configured timeout %s", timeout, rt.cfg.Timeout)
		}

		p := poller.New(rt.client, newUpdatePrinter(rt.out), rt.logger, poller.Config{
			Timeout:        timeout,
			AllowedUpdates: allowed,
			Offset:         offset,
		})
		rt.logger.Info("polling for updates", "timeout", timeout)
		return p.Run(ctx)
	})
	return cmd
}
