package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.handleHealth())

	if g.metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.metrics)
	}

	if g.updates != nil {
		r.Post(g.config.WebhookPath, newWebhookReceiver(g.updates, g.config.SecretToken, g.counters, g.logger).ServeHTTP)
	}

	return r
}
