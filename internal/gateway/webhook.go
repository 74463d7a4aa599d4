package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/flemzord/botapi/pkg/botapi"
)

// SecretTokenHeader carries the secret_token given to setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateSize bounds a single webhook body.
const maxUpdateSize = 1 << 20

// UpdateHandler processes an update delivered by webhook.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update botapi.Update) error
}

// UpdateHandlerFunc adapts a function to UpdateHandler.
type UpdateHandlerFunc func(ctx context.Context, update botapi.Update) error

// HandleUpdate implements UpdateHandler.
func (f UpdateHandlerFunc) HandleUpdate(ctx context.Context, update botapi.Update) error {
	return f(ctx, update)
}

type webhookReceiver struct {
	handler  UpdateHandler
	secret   string
	counters *Counters
	logger   *slog.Logger
}

func newWebhookReceiver(h UpdateHandler, secret string, counters *Counters, logger *slog.Logger) *webhookReceiver {
	return &webhookReceiver{handler: h, secret: secret, counters: counters, logger: logger}
}

// ServeHTTP implements http.Handler. It checks the secret token when one is
// configured, decodes the update and dispatches it.
func (wr *webhookReceiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if wr.secret != "" && !validSecret(r.Header.Get(SecretTokenHeader), wr.secret) {
		wr.counters.RecordRejected()
		wr.logger.Warn("webhook rejected: bad secret token", "remote", r.RemoteAddr)
		http.Error(w, "invalid secret token", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateSize))
	if err != nil {
		wr.counters.RecordRejected()
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var update botapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		wr.counters.RecordRejected()
		wr.logger.Warn("webhook rejected: malformed update", "error", err)
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}

	if err := wr.handler.HandleUpdate(r.Context(), update); err != nil {
		wr.logger.Error("update handler failed", "update_id", update.UpdateID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	wr.counters.RecordUpdate(int64(update.UpdateID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// validSecret compares in constant time.
func validSecret(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
