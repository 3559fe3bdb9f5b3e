package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/engMANP/carat/internal/sampler"
)

const schema = `
CREATE TABLE IF NOT EXISTS samples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	uuid TEXT NOT NULL,
	triggered_by TEXT NOT NULL,
	battery_level REAL NOT NULL,
	battery_state TEXT NOT NULL,
	cpu_usage REAL NOT NULL,
	cpu_usage_valid INTEGER NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_ts ON samples(timestamp);
CREATE UNIQUE INDEX IF NOT EXISTS idx_samples_uuid ON samples(uuid);
`

// DB wraps a SQLite database for assembled samples. Frequently queried
// fields get their own columns; the full sample rides along as json, which
// is also what the D-Bus surface serves.
type DB struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// InsertSample persists one assembled sample.
func (d *DB) InsertSample(s *sampler.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	_, err = d.db.Exec(
		"INSERT INTO samples (timestamp, uuid, triggered_by, battery_level, battery_state, cpu_usage, cpu_usage_valid, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.Timestamp.Unix(), s.UUID, s.TriggeredBy,
		s.Battery.Level, s.Battery.State,
		s.CPU.Usage, s.CPU.UsageValid,
		string(payload),
	)
	return err
}

// LatestSample returns the most recent sample, or nil when none exists.
func (d *DB) LatestSample() (*sampler.Sample, error) {
	row := d.db.QueryRow("SELECT payload FROM samples ORDER BY timestamp DESC, id DESC LIMIT 1")
	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s sampler.Sample
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("unmarshal sample: %w", err)
	}
	return &s, nil
}

// SamplesInRange returns samples within the given unix time range, oldest first.
func (d *DB) SamplesInRange(from, to int64) ([]*sampler.Sample, error) {
	rows, err := d.db.Query(
		"SELECT payload FROM samples WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp, id",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*sampler.Sample
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var s sampler.Sample
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("unmarshal sample: %w", err)
		}
		samples = append(samples, &s)
	}
	return samples, rows.Err()
}
