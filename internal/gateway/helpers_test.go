package gateway

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/flemzord/botapi/pkg/botapi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// recordingHandler is a test helper that records updates.
type recordingHandler struct {
	mu      sync.Mutex
	updates []botapi.Update
	err     error
}

func (h *recordingHandler) HandleUpdate(_ context.Context, u botapi.Update) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, u)
	return h.err
}

func (h *recordingHandler) received() []botapi.Update {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]botapi.Update(nil), h.updates...)
}
