package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// fetchedMedia is a remote resource materialized in a temporary file.
type fetchedMedia struct {
	Path        string
	ContentType string
}

// fetchMedia downloads rawURL into a new temporary file. The caller owns the
// file and must remove it.
func (c *Client) fetchMedia(ctx context.Context, rawURL string) (fetchedMedia, error) {
	c.logger.Debug("fetching remote media", "component", "botapi", "operation", "fetch_media")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fetchedMedia{}, fmt.Errorf("botapi: create media request: %w", err)
	}

	resp, err := c.fetch.Do(req)
	if err != nil {
		return fetchedMedia{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope Response
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = json.Unmarshal(body, &envelope)
		return fetchedMedia{}, newAPIError("fetchMedia", resp.StatusCode, envelope.Description, fallbackFetch)
	}

	contentType := resp.Header.Get("Content-Type")
	pattern := "botapi-*"
	if suffix := mediaSuffix(contentType); suffix != "" {
		pattern += "." + suffix
	}

	f, err := os.CreateTemp(c.tempDir, pattern)
	if err != nil {
		return fetchedMedia{}, err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fetchedMedia{}, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fetchedMedia{}, err
	}

	c.logger.Debug("remote media fetched", "component", "botapi", "operation", "fetch_media",
		"path", f.Name(), "content_type", contentType)
	return fetchedMedia{Path: f.Name(), ContentType: contentType}, nil
}

// mediaSuffix returns the subtype of a content type ("image/png" -> "png").
// Parameters are dropped, the rest is used verbatim.
func mediaSuffix(contentType string) string {
	_, subtype, ok := strings.Cut(contentType, "/")
	if !ok {
		return ""
	}
	subtype, _, _ = strings.Cut(subtype, ";")
	subtype, _, _ = strings.Cut(subtype, "/")
	return strings.TrimSpace(subtype)
}
