package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxResponseBytes = 10 << 20 // 10 MiB
	tracerName       = "github.com/flemzord/botapi/pkg/botapi"
)

// Client is a thin HTTP wrapper around the Telegram Bot API.
type Client struct {
	token     string
	baseURL   string
	http      *http.Client
	fetch     *http.Client
	logger    *slog.Logger
	tracer    trace.Tracer
	observers []Observer
	tempDir   string

	removeFile func(string) error
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another Bot API server (a local
// telegram-bot-api instance, or an httptest server).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets the transport. The default is a zero http.Client, so no
// timeout is applied unless the caller configures one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithFetchClient sets the transport used to download remote media before
// upload. Defaults to the client given to WithHTTPClient. Use it to put
// address restrictions on downloads without affecting Bot API calls.
func WithFetchClient(hc *http.Client) Option {
	return func(c *Client) { c.fetch = hc }
}

// WithLogger sets the logger used for debug output and cleanup warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the OpenTelemetry provider used for call spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithObserver registers observers notified after every call.
func WithObserver(observers ...Observer) Option {
	return func(c *Client) {
		for _, o := range observers {
			if o != nil {
				c.observers = append(c.observers, o)
			}
		}
	}
}

// WithTempDir sets the directory for re-fetched media. Defaults to os.TempDir.
func WithTempDir(dir string) Option {
	return func(c *Client) { c.tempDir = dir }
}

// NewClient creates a new Telegram Bot API client for token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		logger:  slog.New(slog.DiscardHandler),
		tracer:  otel.GetTracerProvider().Tracer(tracerName),

		removeFile: os.Remove,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetch == nil {
		c.fetch = c.http
	}
	if err := validateBaseURL(c.baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

// Response is the envelope returned by every Bot API method.
type Response struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters contains information about why a request was unsuccessful.
type ResponseParameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}

// Call sends one plain (non-media) request. POST bodies are JSON, GET fields
// travel in the query string. opts are merged over payload.
//
// A transport failure is returned unchanged. A response not marked ok yields
// an *APIError.
func (c *Client) Call(ctx context.Context, verb, method string, payload Params, opts Options) (*Response, error) {
	if method == "" {
		return nil, ErrEmptyMethod
	}
	ctx, scope := c.begin(ctx, verb, method)
	resp, err := c.send(ctx, verb, method, merge(payload, opts))
	scope.end(err)
	return resp, err
}

func (c *Client) send(ctx context.Context, verb, method string, fields map[string]any) (*Response, error) {
	c.logger.Debug("telegram API "+verb, "component", "botapi", "operation", method)

	endpoint := BuildEndpoint(c.baseURL, c.token, method)

	var req *http.Request
	switch verb {
	case http.MethodGet:
		query, err := queryValues(fields)
		if err != nil {
			return nil, fmt.Errorf("botapi: %s: %w", method, err)
		}
		if len(query) > 0 {
			endpoint += "?" + query.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("botapi: create %s request: %w", method, err)
		}
	case http.MethodPost:
		data, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("botapi: marshal %s request: %w", method, err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("botapi: create %s request: %w", method, err)
		}
		req.Header.Set("Content-Type", "application/json")
	default:
		return nil, fmt.Errorf("botapi: %s: unsupported HTTP verb %q", method, verb)
	}

	return c.do(req, method, fallbackFor(verb))
}

// do executes req and normalizes the response envelope.
func (c *Client) do(req *http.Request, method, fallback string) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("botapi: read %s response: %w", method, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: %s response exceeds %d bytes", ErrResponseTooLarge, method, maxResponseBytes)
	}

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil || !envelope.OK {
		code := envelope.ErrorCode
		if code == 0 && resp.StatusCode >= http.StatusBadRequest {
			code = resp.StatusCode
		}
		apiErr := newAPIError(method, code, envelope.Description, fallback)
		if envelope.Parameters != nil {
			apiErr.RetryAfter = envelope.Parameters.RetryAfter
		}
		return nil, apiErr
	}

	return &envelope, nil
}

// call is Call followed by decoding Result into T.
func call[T any](ctx context.Context, c *Client, verb, method string, payload Params, opts Options) (T, error) {
	resp, err := c.Call(ctx, verb, method, payload, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResult[T](method, resp)
}

func decodeResult[T any](method string, resp *Response) (T, error) {
	var out T
	if len(resp.Result) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return out, fmt.Errorf("botapi: decode %s result: %w", method, err)
	}
	return out, nil
}

func fallbackFor(verb string) string {
	if verb == http.MethodGet {
		return fallbackGET
	}
	return fallbackPOST
}

// scrub removes the bot token from s so error text can be logged or stored.
func (c *Client) scrub(s string) string {
	return strings.ReplaceAll(s, c.token, "<token>")
}
