package botapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"net/http"
	"os"
	"slices"
)

// MediaRequest describes one media upload.
type MediaRequest struct {
	Kind    MediaKind
	ChatID  ChatID
	File    InputFile
	Options Options
	// Method overrides the method derived from Kind.
	Method string
}

// SendMedia transmits a media value as multipart/form-data.
//
// A remote URL is downloaded to a temporary file first and uploaded as local
// content; the file is removed before SendMedia returns, whatever the outcome.
// A file identifier is sent as a plain form field named after Kind, local
// content as a file part of that name.
func (c *Client) SendMedia(ctx context.Context, req MediaRequest) (*Message, error) {
	resp, err := c.sendMedia(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeResult[*Message](req.method(), resp)
}

func (r MediaRequest) method() string {
	if r.Method != "" {
		return r.Method
	}
	return r.Kind.Method()
}

func (c *Client) sendMedia(ctx context.Context, req MediaRequest) (_ *Response, err error) {
	method := req.method()
	if method == "" {
		return nil, ErrEmptyMethod
	}

	ctx, scope := c.begin(ctx, http.MethodPost, method)
	defer func() { scope.end(err) }()

	if req.Kind == "" {
		return nil, fmt.Errorf("%w: media kind is required", ErrInvalidMedia)
	}
	if req.ChatID.IsZero() {
		return nil, fmt.Errorf("%w: chat id is required", ErrInvalidMedia)
	}

	body := form{}.withField("chat_id", req.ChatID.String())

	file := req.File
	if file.IsRemote() {
		if !isRemoteURL(file.value) {
			return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidMedia, c.scrub(file.value))
		}
		fetched, err := c.fetchMedia(ctx, file.value)
		scope.fetched(err)
		if err != nil {
			return nil, err
		}
		defer c.removeTemp(fetched.Path)
		file = FilePath(fetched.Path)
	}

	for _, key := range slices.Sorted(maps.Keys(req.Options)) {
		value, err := formatValue(req.Options[key])
		if err != nil {
			return nil, fmt.Errorf("botapi: %s: encode option %s: %w", method, key, err)
		}
		body = body.withField(key, value)
	}

	field := string(req.Kind)
	switch file.source {
	case sourceID:
		body = body.withField(field, file.value)
	case sourcePath:
		f, err := os.Open(file.value)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		body = body.withFile(field, file.name, f)
	case sourceReader:
		if file.reader == nil {
			return nil, fmt.Errorf("%w: nil reader", ErrInvalidMedia)
		}
		body = body.withFile(field, file.name, file.reader)
	default:
		return nil, fmt.Errorf("%w: no media supplied", ErrInvalidMedia)
	}

	c.logger.Debug("telegram API multipart POST", "component", "botapi", "operation", method,
		"media_field", field, "file_id", file.IsFileID())

	buf, contentType, err := body.encode()
	if err != nil {
		return nil, fmt.Errorf("botapi: %s: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, BuildEndpoint(c.baseURL, c.token, method), buf)
	if err != nil {
		return nil, fmt.Errorf("botapi: create %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	return c.do(httpReq, method, fallbackPOST)
}

// removeTemp deletes a fetched media file. Failures are logged, not returned.
func (c *Client) removeTemp(path string) {
	if err := c.removeFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("failed to remove fetched media",
			"component", "botapi",
			"operation", "fetch_media",
			"path", path,
			"error", err,
		)
	}
}
