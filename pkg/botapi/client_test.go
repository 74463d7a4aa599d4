package botapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+testToken+"/getMe" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		writeJSON(t, w, okResult(User{ID: 123, IsBot: true, FirstName: "TestBot", Username: "test_bot"}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	user, err := client.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if user.ID != 123 {
		t.Errorf("ID = %d, want 123", user.ID)
	}
	if !user.IsBot {
		t.Error("IsBot = false, want true")
	}
	if user.Username != "test_bot" {
		t.Errorf("Username = %q, want %q", user.Username, "test_bot")
	}
}

func TestGetMe_NoCaching(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, okResult(User{ID: 1}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	for range 2 {
		if _, err := client.GetMe(context.Background()); err != nil {
			t.Fatalf("GetMe() error: %v", err)
		}
	}
	if _, err := client.GetChat(context.Background(), ChatByID(42)); err != nil {
		t.Fatalf("GetChat() error: %v", err)
	}
	if _, err := client.GetChat(context.Background(), ChatByID(42)); err != nil {
		t.Fatalf("GetChat() error: %v", err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("calls = %d, want 4", got)
	}
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+testToken+"/sendMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req["chat_id"] != float64(42) {
			t.Errorf("chat_id = %v, want 42", req["chat_id"])
		}
		if req["text"] != "hello" {
			t.Errorf("text = %v, want hello", req["text"])
		}
		if req["parse_mode"] != "MarkdownV2" {
			t.Errorf("parse_mode = %v, want MarkdownV2", req["parse_mode"])
		}

		writeJSON(t, w, okResult(Message{MessageID: 99, Chat: Chat{ID: 42, Type: "private"}, Text: "hello"}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	msg, err := client.SendMessage(context.Background(), ChatByID(42), "hello", Options{"parse_mode": "MarkdownV2"})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if msg.MessageID != 99 {
		t.Errorf("MessageID = %d, want 99", msg.MessageID)
	}
	if msg.Text != "hello" {
		t.Errorf("Text = %q, want %q", msg.Text, "hello")
	}
}

func TestCall_OptionsMergedLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req["text"] != "from options" {
			t.Errorf("text = %v, want the option value", req["text"])
		}
		if req["chat_id"] != float64(1) {
			t.Errorf("chat_id = %v, want 1", req["chat_id"])
		}
		writeJSON(t, w, okResult(true))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Call(context.Background(), http.MethodPost, "sendMessage",
		Params{"chat_id": 1, "text": "from payload"},
		Options{"text": "from options"})
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
}

func TestCall_EmptyBodyIsObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "{}" {
			t.Errorf("body = %q, want {}", body)
		}
		writeJSON(t, w, okResult(true))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if err := client.DeleteWebhook(context.Background()); err != nil {
		t.Fatalf("DeleteWebhook() error: %v", err)
	}
}

func TestCall_ReturnsResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"ok": true, "result": map[string]any{"id": 7}, "description": "fine"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	resp, err := client.Call(context.Background(), http.MethodGet, "getChat", Params{"chat_id": 7}, nil)
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if !resp.OK {
		t.Error("OK = false, want true")
	}
	if string(resp.Result) != `{"id":7}` {
		t.Errorf("Result = %s, want {\"id\":7}", resp.Result)
	}
	if resp.Description != "fine" {
		t.Errorf("Description = %q, want %q", resp.Description, "fine")
	}
}

func TestGetUpdates_QueryOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+testToken+"/getUpdates" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		query := r.URL.Query()
		if len(query) != 1 {
			t.Errorf("query = %v, want only timeout", query)
		}
		if got := query.Get("timeout"); got != "30" {
			t.Errorf("timeout = %q, want 30", got)
		}

		writeJSON(t, w, okResult([]Update{
			{UpdateID: 100, Message: &Message{MessageID: 1, Text: "test", Chat: Chat{ID: 42}}},
			{UpdateID: 101, Message: &Message{MessageID: 2, Text: "test2", Chat: Chat{ID: 42}}},
		}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	updates, err := client.GetUpdates(context.Background(), Options{"timeout": 30})
	if err != nil {
		t.Fatalf("GetUpdates() error: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("len(updates) = %d, want 2", len(updates))
	}
	if updates[1].Message.Text != "test2" {
		t.Errorf("updates[1].Message.Text = %q, want %q", updates[1].Message.Text, "test2")
	}
}

func TestGet_StructuredValuesAreJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("allowed_updates"); got != `["message","callback_query"]` {
			t.Errorf("allowed_updates = %q", got)
		}
		writeJSON(t, w, okResult([]Update{}))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.GetUpdates(context.Background(), Options{
		"allowed_updates": []string{"message", "callback_query"},
	})
	if err != nil {
		t.Fatalf("GetUpdates() error: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, map[string]any{
			"ok":          false,
			"error_code":  400,
			"description": "Bad Request: chat not found",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.SendMessage(context.Background(), ChatByID(999), "hello", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 400 {
		t.Errorf("Code = %d, want 400", apiErr.Code)
	}
	if apiErr.Description != "Bad Request: chat not found" {
		t.Errorf("Description = %q, want %q", apiErr.Description, "Bad Request: chat not found")
	}
	if apiErr.Method != "sendMessage" {
		t.Errorf("Method = %q, want sendMessage", apiErr.Method)
	}
}

func TestAPIError_Fallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		get  bool
		want string
	}{
		{"post ok false", `{"ok":false}`, false, "Unknown error performing POST request"},
		{"post ok missing", `{"result":true}`, false, "Unknown error performing POST request"},
		{"get ok false", `{"ok":false}`, true, "Unknown error performing GET request"},
		{"get not json", `<html>bad gateway</html>`, true, "Unknown error performing GET request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			var err error
			if tt.get {
				_, err = client.GetMe(context.Background())
			} else {
				err = client.SetWebhook(context.Background(), "https://example.com/hook", nil)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.Description != tt.want {
				t.Errorf("Description = %q, want %q", apiErr.Description, tt.want)
			}
		})
	}
}

func TestTransportErrorUnwrapped(t *testing.T) {
	sentinel := errors.New("connection reset")
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, sentinel
	})}

	client := newTestClient(t, "https://api.example.com", WithHTTPClient(hc))
	_, err := client.GetMe(context.Background())
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want %v", err, sentinel)
	}
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		t.Fatalf("expected the transport's *url.Error, got %T", err)
	}
	if Classify(err) != OutcomeTransportError {
		t.Errorf("Classify() = %q, want %q", Classify(err), OutcomeTransportError)
	}
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("NewClient(\"\") error = %v, want ErrEmptyToken", err)
	}
	if _, err := NewClient(testToken, WithBaseURL("ftp://example.com")); err == nil {
		t.Error("expected error for non-http base URL")
	}
	if _, err := NewClient(testToken, WithBaseURL("not a url")); err == nil {
		t.Error("expected error for relative base URL")
	}
	client, err := NewClient(testToken)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}
}

func TestCall_EmptyMethod(t *testing.T) {
	client := newTestClient(t, "https://api.example.com")
	if _, err := client.Call(context.Background(), http.MethodPost, "", nil, nil); !errors.Is(err, ErrEmptyMethod) {
		t.Errorf("error = %v, want ErrEmptyMethod", err)
	}
}

func TestCall_UnsupportedVerb(t *testing.T) {
	client := newTestClient(t, "https://api.example.com")
	_, err := client.Call(context.Background(), http.MethodDelete, "getMe", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported HTTP verb") {
		t.Errorf("error = %v, want unsupported verb", err)
	}
}

func TestBuildEndpoint(t *testing.T) {
	got := BuildEndpoint("https://api.telegram.org/", "123:ABC", "sendMessage")
	want := "https://api.telegram.org/bot123:ABC/sendMessage"
	if got != want {
		t.Errorf("BuildEndpoint() = %q, want %q", got, want)
	}
}

func TestFileURL(t *testing.T) {
	client := newTestClient(t, "https://api.telegram.org")
	got := client.FileURL("documents/file_123.pdf")
	want := "https://api.telegram.org/file/bot" + testToken + "/documents/file_123.pdf"
	if got != want {
		t.Errorf("FileURL() = %q, want %q", got, want)
	}
}

func TestGetChatMembersCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("chat_id"); got != "-100123" {
			t.Errorf("chat_id = %q, want -100123", got)
		}
		writeJSON(t, w, okResult(17))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	n, err := client.GetChatMembersCount(context.Background(), ChatByID(-100123))
	if err != nil {
		t.Fatalf("GetChatMembersCount() error: %v", err)
	}
	if n != 17 {
		t.Errorf("count = %d, want 17", n)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Method: "sendMessage", Code: 429, Description: "Too Many Requests", RetryAfter: 5}
	want := "botapi: sendMessage: 429 Too Many Requests (retry after 5s)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &APIError{Method: "getMe", Code: 400, Description: "Bad Request"}
	want2 := "botapi: getMe: 400 Bad Request"
	if got := err2.Error(); got != want2 {
		t.Errorf("Error() = %q, want %q", got, want2)
	}

	err3 := &APIError{Method: "getMe", Description: "Unknown error performing GET request"}
	want3 := "botapi: getMe: Unknown error performing GET request"
	if got := err3.Error(); got != want3 {
		t.Errorf("Error() = %q, want %q", got, want3)
	}
}

func TestCall_ResponseSizeLimit(t *testing.T) {
	envelope := func(size int) []byte {
		head, tail := `{"ok":true,"result":"`, `"}`
		return []byte(head + strings.Repeat("x", size-len(head)-len(tail)) + tail)
	}

	tests := []struct {
		name   string
		size   int
		tooBig bool
	}{
		{"at limit", maxResponseBytes, false},
		{"over limit", maxResponseBytes + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := envelope(tt.size)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Call(context.Background(), http.MethodGet, "getMe", nil, nil)
			if !tt.tooBig {
				if err != nil {
					t.Fatalf("Call() error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrResponseTooLarge) {
				t.Fatalf("Call() error = %v, want ErrResponseTooLarge", err)
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				t.Errorf("oversized response reported as API error: %v", apiErr)
			}
		})
	}
}
