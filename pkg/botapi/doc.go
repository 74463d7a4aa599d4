// Package botapi is a client binding for the Telegram Bot HTTP API.
//
// Every exported method maps onto one Bot API method and issues exactly one
// request (two when a media URL has to be re-fetched first):
//
//   - Plain methods are sent as JSON POST or query-string GET requests.
//   - Media methods (sendPhoto, sendAudio, ...) are sent as multipart/form-data.
//     A remote URL is downloaded to a temporary file, uploaded, and the file is
//     removed once the request finishes. Opaque file identifiers are passed
//     through as plain form fields.
//   - The edit methods accept either an inline message identifier or a
//     chat/message pair, see MessageRef and ResolveEditArgs.
//
// A Client holds no mutable state and may be shared between goroutines. It
// never retries, caches or rate-limits.
//
// No external Telegram library is used. The client speaks to the Bot API via
// net/http + encoding/json and reports every call to the configured Observers
// and OpenTelemetry tracer.
package botapi
