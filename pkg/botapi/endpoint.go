package botapi

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public Bot API host.
const DefaultBaseURL = "https://api.telegram.org"

// BuildEndpoint returns the URL of a Bot API method:
// <baseURL>/bot<token>/<method>.
func BuildEndpoint(baseURL, token, method string) string {
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(baseURL, "/"), token, method)
}

// buildFileEndpoint returns the download URL of a file path returned by getFile.
func buildFileEndpoint(baseURL, token, filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", strings.TrimRight(baseURL, "/"), token, strings.TrimLeft(filePath, "/"))
}

// validateBaseURL checks that baseURL is an absolute http or https URL.
func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("botapi: base URL must be an absolute http/https URL, got %q", baseURL)
	}
	return nil
}
