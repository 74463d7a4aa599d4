package gateway

import "sync/atomic"

// Counters tracks webhook traffic using atomic operations for lock-free
// concurrency.
type Counters struct {
	updates      atomic.Int64
	rejected     atomic.Int64
	lastUpdateID atomic.Int64
}

// RecordUpdate records an accepted update.
func (c *Counters) RecordUpdate(updateID int64) {
	c.updates.Add(1)
	c.lastUpdateID.Store(updateID)
}

// RecordRejected records a request refused before reaching the handler.
func (c *Counters) RecordRejected() {
	c.rejected.Add(1)
}

// Snapshot returns a point-in-time view of the counters.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		Updates:      c.updates.Load(),
		Rejected:     c.rejected.Load(),
		LastUpdateID: c.lastUpdateID.Load(),
	}
}

// CountersSnapshot is a serializable point-in-time view.
type CountersSnapshot struct {
	Updates      int64 `json:"updates"`
	Rejected     int64 `json:"rejected"`
	LastUpdateID int64 `json:"last_update_id"`
}
