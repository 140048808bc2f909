package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/troutline/stocking-events/internal/event"
	"github.com/troutline/stocking-events/internal/match"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	water_name TEXT NOT NULL,
	county TEXT NOT NULL,
	species TEXT NOT NULL,
	quantity INTEGER,
	avg_length REAL,
	date_stocked TEXT NOT NULL,
	first_seen_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_first_seen ON events(first_seen_at);
CREATE TABLE IF NOT EXISTS subscriptions (
	token TEXT PRIMARY KEY,
	counties TEXT NOT NULL DEFAULT '[]',
	species TEXT NOT NULL DEFAULT '[]',
	waters TEXT NOT NULL DEFAULT '[]',
	updated_at TEXT NOT NULL
);
`

const eventColumns = "id, water_name, county, species, quantity, avg_length, date_stocked, first_seen_at"

// Store is the keyed record store behind the pipeline: stocking events
// keyed by content-derived ID plus subscriber filter profiles keyed by
// push token.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. The parent directory is created if missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set pragmas for concurrent access and performance
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	_, _ = db.Exec("PRAGMA synchronous=NORMAL")
	_, _ = db.Exec("PRAGMA busy_timeout=5000")

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertResult reports what a batch insert actually changed.
type InsertResult struct {
	Inserted   int
	NewRecords []*event.Event
}

// InsertEvents persists a batch of events in one transaction, silently
// ignoring any event whose ID already exists. NewRecords holds the
// Inserted most-recently-first-seen records read back from the store, so
// downstream matching only ever sees what was genuinely new this cycle.
// The transaction serializes concurrent ingests: two cycles racing on the
// same extracted event can never both report it as new.
func (s *Store) InsertEvents(ctx context.Context, events []*event.Event) (*InsertResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, evt := range events {
		var qty sql.NullInt64
		if evt.Quantity != nil {
			qty = sql.NullInt64{Int64: int64(*evt.Quantity), Valid: true}
		}
		var length sql.NullFloat64
		if evt.AvgLength != nil {
			length = sql.NullFloat64{Float64: *evt.AvgLength, Valid: true}
		}

		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			evt.ID, evt.WaterName, evt.County, evt.Species, qty, length,
			evt.DateStocked, evt.FirstSeenAt.UTC().Format(time.RFC3339))
		if err != nil {
			return nil, fmt.Errorf("inserting event %s: %w", evt.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking insert result: %w", err)
		}
		inserted += int(n)
	}

	result := &InsertResult{Inserted: inserted}
	if inserted > 0 {
		rows, err := tx.QueryContext(ctx,
			"SELECT "+eventColumns+" FROM events ORDER BY first_seen_at DESC, rowid DESC LIMIT ?",
			inserted)
		if err != nil {
			return nil, fmt.Errorf("reading back new records: %w", err)
		}
		result.NewRecords, err = scanEvents(rows)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing batch: %w", err)
	}
	return result, nil
}

// RecentEvents returns up to limit events ordered by recency of first-seen.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events ORDER BY first_seen_at DESC, rowid DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent events: %w", err)
	}
	return scanEvents(rows)
}

// UpsertSubscription stores a subscriber's filter profile, overwriting any
// prior filter sets for the same token. Filter sets are never merged.
func (s *Store) UpsertSubscription(ctx context.Context, sub *match.Subscription) error {
	if strings.TrimSpace(sub.Token) == "" {
		return fmt.Errorf("subscription token is required")
	}

	counties, err := marshalFilterSet(sub.Counties)
	if err != nil {
		return err
	}
	species, err := marshalFilterSet(sub.Species)
	if err != nil {
		return err
	}
	waters, err := marshalFilterSet(sub.Waters)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (token, counties, species, waters, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			counties = excluded.counties,
			species = excluded.species,
			waters = excluded.waters,
			updated_at = excluded.updated_at`,
		sub.Token, counties, species, waters, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting subscription: %w", err)
	}
	return nil
}

// ListSubscriptions returns every stored subscription.
func (s *Store) ListSubscriptions(ctx context.Context) ([]*match.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT token, counties, species, waters, updated_at FROM subscriptions")
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*match.Subscription
	for rows.Next() {
		var sub match.Subscription
		var counties, species, waters, updatedAt string
		if err := rows.Scan(&sub.Token, &counties, &species, &waters, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		if sub.Counties, err = unmarshalFilterSet(counties); err != nil {
			return nil, err
		}
		if sub.Species, err = unmarshalFilterSet(species); err != nil {
			return nil, err
		}
		if sub.Waters, err = unmarshalFilterSet(waters); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			sub.UpdatedAt = t
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}
	return subs, nil
}

func scanEvents(rows *sql.Rows) ([]*event.Event, error) {
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		var evt event.Event
		var qty sql.NullInt64
		var length sql.NullFloat64
		var firstSeen string
		if err := rows.Scan(&evt.ID, &evt.WaterName, &evt.County, &evt.Species,
			&qty, &length, &evt.DateStocked, &firstSeen); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if qty.Valid {
			v := int(qty.Int64)
			evt.Quantity = &v
		}
		if length.Valid {
			v := length.Float64
			evt.AvgLength = &v
		}
		if t, err := time.Parse(time.RFC3339, firstSeen); err == nil {
			evt.FirstSeenAt = t
		}
		events = append(events, &evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

func marshalFilterSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding filter set: %w", err)
	}
	return string(data), nil
}

func unmarshalFilterSet(data string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("decoding filter set: %w", err)
	}
	return values, nil
}
