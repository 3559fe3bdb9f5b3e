// Package calllog reads the device call history and aggregates it into
// calendar-month buckets.
package calllog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Kind classifies a call event. The numeric values match the call-history
// database schema.
type Kind int

const (
	KindUnknown  Kind = 0
	KindIncoming Kind = 1
	KindOutgoing Kind = 2
	KindMissed   Kind = 3
)

// Event is one entry from the device call history. Events are read-only and
// arrive in no guaranteed order even when the query asks for one.
type Event struct {
	Kind            Kind
	OccurredAt      time.Time
	DurationSeconds int64
}

// Source yields raw call events. The returned order is a hint only;
// consumers must not depend on it.
type Source interface {
	Query(ctx context.Context) ([]Event, error)
}

// SQLiteSource reads call events from the telephony daemon's history
// database.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSource opens the call-history database read-only.
func OpenSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open call log: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Query returns all call events, newest first as stored. Negative durations
// from the untrusted history are clamped to zero.
func (s *SQLiteSource) Query(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT type, date, duration FROM calls ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			kind     int
			dateMS   int64
			duration int64
		)
		if err := rows.Scan(&kind, &dateMS, &duration); err != nil {
			return nil, fmt.Errorf("scan call row: %w", err)
		}
		if duration < 0 {
			duration = 0
		}
		events = append(events, Event{
			Kind:            Kind(kind),
			OccurredAt:      time.UnixMilli(dateMS),
			DurationSeconds: duration,
		})
	}
	return events, rows.Err()
}
