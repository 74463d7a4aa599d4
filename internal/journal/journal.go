package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/botapi/pkg/botapi"
)

// timeLayout keeps started_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one journaled call.
type Entry struct {
	ID        string        `json:"id"`
	Method    string        `json:"method"`
	Verb      string        `json:"verb"`
	Outcome   string        `json:"outcome"`
	Detail    string        `json:"detail,omitempty"`
	Fetched   string        `json:"fetched,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// MethodStats aggregates the calls made to one method. Errors counts every
// outcome other than ok.
type MethodStats struct {
	Method      string        `json:"method"`
	Calls       int64         `json:"calls"`
	Errors      int64         `json:"errors"`
	AvgDuration time.Duration `json:"avg_duration"`
}

// Journal is a botapi.Observer that writes each call to SQLite.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ botapi.Observer = (*Journal)(nil)

// ObserveCall implements botapi.Observer. Write failures are logged; they
// never fail the call being observed.
func (j *Journal) ObserveCall(ctx context.Context, info botapi.CallInfo) {
	entry := Entry{
		ID:        info.ID,
		Method:    info.Method,
		Verb:      info.Verb,
		Outcome:   string(info.Outcome),
		Detail:    info.Detail,
		Fetched:   string(info.Fetch),
		StartedAt: info.Started,
		Duration:  info.Duration,
	}
	if err := j.Record(context.WithoutCancel(ctx), entry); err != nil {
		j.logger.Warn("journal write failed", "call_id", info.ID, "method", info.Method, "error", err)
	}
}

// Record inserts one entry. A repeated ID replaces the earlier row.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO calls (id, method, verb, outcome, detail, fetched, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Method, e.Verb, e.Outcome, e.Detail, e.Fetched,
		e.StartedAt.UTC().Format(timeLayout), e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.Method, err)
	}
	return nil
}

// Recent returns the n most recent entries, newest first. An empty method
// matches every method.
func (j *Journal) Recent(ctx context.Context, n int, method string) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, method, verb, outcome, detail, fetched, started_at, duration_ms
		FROM calls
		WHERE ? = '' OR method = ?
		ORDER BY started_at DESC
		LIMIT ?`,
		method, method, n,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			started string
			ms      int64
		)
		if err := rows.Scan(&e.ID, &e.Method, &e.Verb, &e.Outcome, &e.Detail, &e.Fetched, &started, &ms); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("journal: parse started_at %q: %w", started, err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate: %w", err)
	}
	return entries, nil
}

// Stats reports calls, errors and average duration per method.
func (j *Journal) Stats(ctx context.Context) ([]MethodStats, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT method, COUNT(*),
			SUM(CASE WHEN outcome = ? THEN 0 ELSE 1 END),
			COALESCE(AVG(duration_ms), 0)
		FROM calls
		GROUP BY method
		ORDER BY method`, string(botapi.OutcomeOK))
	if err != nil {
		return nil, fmt.Errorf("journal: query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []MethodStats
	for rows.Next() {
		var (
			s     MethodStats
			avgMS float64
		)
		if err := rows.Scan(&s.Method, &s.Calls, &s.Errors, &avgMS); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		s.AvgDuration = time.Duration(avgMS * float64(time.Millisecond))
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate: %w", err)
	}
	return stats, nil
}

// Prune deletes entries started before cutoff and reports how many went.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, "DELETE FROM calls WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
