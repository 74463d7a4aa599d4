package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Updates      int64  `json:"updates"`
	Rejected     int64  `json:"rejected"`
	LastUpdateID int64  `json:"last_update_id"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := g.counters.Snapshot()
		resp := HealthResponse{
			Status:       "ok",
			Uptime:       time.Since(g.startedAt).Truncate(time.Second).String(),
			Updates:      snap.Updates,
			Rejected:     snap.Rejected,
			LastUpdateID: snap.LastUpdateID,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
