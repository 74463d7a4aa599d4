package botapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []CallInfo
}

func (o *recordingObserver) ObserveCall(_ context.Context, info CallInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, info)
}

func (o *recordingObserver) all() []CallInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]CallInfo(nil), o.calls...)
}

func TestObserver_ReceivesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getChat") {
			writeJSON(t, w, map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"})
			return
		}
		writeJSON(t, w, okResult(User{ID: 1}))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := newTestClient(t, srv.URL, WithObserver(obs, nil))

	if _, err := client.GetMe(context.Background()); err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if _, err := client.GetChat(context.Background(), ChatByID(1)); err == nil {
		t.Fatal("GetChat() expected error")
	}

	calls := obs.all()
	if len(calls) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(calls))
	}
	if calls[0].Method != "getMe" || calls[0].Verb != http.MethodGet || calls[0].Outcome != OutcomeOK {
		t.Errorf("calls[0] = %+v", calls[0])
	}
	if calls[0].ID == "" || calls[0].ID == calls[1].ID {
		t.Errorf("call ids %q, %q, want distinct non-empty", calls[0].ID, calls[1].ID)
	}
	if calls[1].Outcome != OutcomeAPIError || !strings.Contains(calls[1].Detail, "chat not found") {
		t.Errorf("calls[1] = %+v", calls[1])
	}
	if calls[0].Fetch != "" {
		t.Errorf("Fetch = %q, want empty", calls[0].Fetch)
	}
}

func TestObserver_DetailOmitsToken(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial %s: refused", r.URL.Host)
	})}
	obs := &recordingObserver{}
	client := newTestClient(t, "https://api.example.com", WithHTTPClient(hc), WithObserver(obs))

	_, err := client.GetMe(context.Background())
	if err == nil || !strings.Contains(err.Error(), testToken) {
		t.Fatalf("expected the transport error to carry the URL, got %v", err)
	}

	calls := obs.all()
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	if strings.Contains(calls[0].Detail, testToken) {
		t.Errorf("Detail leaks the token: %s", calls[0].Detail)
	}
	if calls[0].Outcome != OutcomeTransportError {
		t.Errorf("Outcome = %q, want %q", calls[0].Outcome, OutcomeTransportError)
	}
}

func TestObserver_FetchOutcome(t *testing.T) {
	ms := newMediaServer(t)
	obs := &recordingObserver{}
	client := newTestClient(t, ms.URL, WithTempDir(t.TempDir()), WithObserver(obs))

	if _, err := client.SendSticker(context.Background(), ChatByID(1), FileURL(ms.URL+"/a.png"), nil); err != nil {
		t.Fatalf("SendSticker() error: %v", err)
	}
	calls := obs.all()
	if len(calls) != 1 || calls[0].Fetch != OutcomeOK || calls[0].Method != "sendSticker" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestTracing_Spans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/leaveChat") {
			writeJSON(t, w, map[string]any{"ok": false})
			return
		}
		writeJSON(t, w, okResult(User{ID: 1}))
	}))
	defer srv.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	client := newTestClient(t, srv.URL, WithTracerProvider(tp))

	if _, err := client.GetMe(context.Background()); err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if err := client.LeaveChat(context.Background(), ChatByID(5)); err == nil {
		t.Fatal("LeaveChat() expected error")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2", len(spans))
	}
	if spans[0].Name() != "botapi getMe" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if !hasAttr(spans[0].Attributes(), attribute.String("botapi.outcome", "ok")) {
		t.Errorf("getMe attributes = %v", spans[0].Attributes())
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("leaveChat status = %v, want Error", spans[1].Status())
	}
}

func hasAttr(attrs []attribute.KeyValue, want attribute.KeyValue) bool {
	for _, a := range attrs {
		if a == want {
			return true
		}
	}
	return false
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeOK},
		{&APIError{Description: "x"}, OutcomeAPIError},
		{fmt.Errorf("wrapped: %w", &ShapeError{Method: "m"}), OutcomeShapeError},
		{&os.PathError{Op: "open", Path: "/x", Err: os.ErrNotExist}, OutcomeLocalError},
		{context.DeadlineExceeded, OutcomeTransportError},
		{errors.New("marshal failed"), OutcomeLocalError},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
