package botapi

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcome classifies how a call ended.
type Outcome string

// Call outcomes.
const (
	OutcomeOK             Outcome = "ok"
	OutcomeAPIError       Outcome = "api_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeShapeError     Outcome = "shape_error"
	OutcomeLocalError     Outcome = "local_error"
)

// CallInfo describes one finished call.
type CallInfo struct {
	ID       string
	Method   string
	Verb     string
	Started  time.Time
	Duration time.Duration
	Outcome  Outcome
	Err      error
	// Detail is Err's text with the bot token removed.
	Detail string
	// Fetch is the outcome of the remote media download, empty when the call
	// did not fetch anything.
	Fetch Outcome
}

// Observer is notified once per call, after the response has been handled
// and any temporary file removed. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveCall(ctx context.Context, info CallInfo)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, info CallInfo)

// ObserveCall implements Observer.
func (f ObserverFunc) ObserveCall(ctx context.Context, info CallInfo) { f(ctx, info) }

// Classify maps an error returned by the client onto an Outcome.
func Classify(err error) Outcome {
	var (
		apiErr   *APIError
		shapeErr *ShapeError
		urlErr   *url.Error
		netErr   net.Error
		pathErr  *fs.PathError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.As(err, &shapeErr):
		return OutcomeShapeError
	case errors.As(err, &pathErr):
		return OutcomeLocalError
	case errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTransportError
	default:
		return OutcomeLocalError
	}
}

// callScope tracks one call from start to its observers.
type callScope struct {
	client *Client
	ctx    context.Context
	span   trace.Span
	info   CallInfo
}

func (c *Client) begin(ctx context.Context, verb, method string) (context.Context, *callScope) {
	ctx, span := c.tracer.Start(ctx, "botapi "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("botapi.method", method),
			attribute.String("http.request.method", verb),
		),
	)
	return ctx, &callScope{
		client: c,
		ctx:    ctx,
		span:   span,
		info: CallInfo{
			ID:      uuid.NewString(),
			Method:  method,
			Verb:    verb,
			Started: time.Now(),
		},
	}
}

// fetched records the outcome of a remote media download.
func (s *callScope) fetched(err error) {
	s.info.Fetch = Classify(err)
	s.span.SetAttributes(attribute.String("botapi.media.fetch", string(s.info.Fetch)))
}

func (s *callScope) end(err error) {
	s.info.Duration = time.Since(s.info.Started)
	s.info.Outcome = Classify(err)
	s.span.SetAttributes(
		attribute.String("botapi.call_id", s.info.ID),
		attribute.String("botapi.outcome", string(s.info.Outcome)),
	)
	if err != nil {
		s.info.Err = err
		s.info.Detail = s.client.scrub(err.Error())
		s.span.SetStatus(codes.Error, s.info.Detail)
	}
	s.span.End()

	s.client.logger.Debug("call finished",
		"component", "botapi",
		"operation", s.info.Method,
		"call_id", s.info.ID,
		"outcome", string(s.info.Outcome),
		"duration", s.info.Duration,
	)

	for _, o := range s.client.observers {
		o.ObserveCall(s.ctx, s.info)
	}
}
