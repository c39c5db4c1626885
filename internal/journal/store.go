package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"beacon/internal/event"
)

// Entry is a journaled record tagged with its journal sequence number.
type Entry struct {
	Seq    int64
	Record event.Record
}

// TopicCount is one row of the per-topic stats query.
type TopicCount struct {
	Topic string
	Count int64
}

// Store manages event persistence backed by SQLite. It implements
// hub.Subscriber[event.Record]: registering a store on a hub journals every
// published record.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the journal database at path and applies
// the schema. The adjacent lock file guards against a second writer.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("journal at %s is locked by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path, lock: lock}, nil
}

// Close closes the database and releases the writer lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the journal database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Receive journals one record. This is the hub.Subscriber entry point.
func (s *Store) Receive(ctx context.Context, rec event.Record) error {
	return s.Append(ctx, rec)
}

// Append inserts a record. Re-appending a record with a known ID is a no-op,
// so replayed events never produce duplicate rows.
func (s *Store) Append(ctx context.Context, rec event.Record) error {
	var fieldsJSON sql.NullString
	if len(rec.Fields) > 0 {
		data, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		fieldsJSON = sql.NullString{String: string(data), Valid: true}
	}

	publishedAt := rec.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO journal_events (event_id, topic, message, fields_json, published_at)
         VALUES (?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Topic,
		rec.Message,
		fieldsJSON,
		publishedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty topic returns
// every topic.
func (s *Store) Recent(ctx context.Context, topic string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT seq, event_id, topic, message, fields_json, published_at
        FROM journal_events`
	args := []any{}
	if topic != "" {
		query += ` WHERE topic = ?`
		args = append(args, topic)
	}
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

// Count reports the number of journaled events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// TopicCounts reports per-topic event counts, largest first.
func (s *Store) TopicCounts(ctx context.Context) ([]TopicCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, COUNT(*) AS n FROM journal_events GROUP BY topic ORDER BY n DESC, topic ASC`)
	if err != nil {
		return nil, fmt.Errorf("count topics: %w", err)
	}
	defer rows.Close()

	var counts []TopicCount
	for rows.Next() {
		var tc TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan topic count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic counts: %w", err)
	}
	return counts, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry       Entry
		fieldsJSON  sql.NullString
		publishedAt string
	)
	if err := rows.Scan(&entry.Seq, &entry.Record.ID, &entry.Record.Topic, &entry.Record.Message, &fieldsJSON, &publishedAt); err != nil {
		return Entry{}, fmt.Errorf("scan event: %w", err)
	}
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &entry.Record.Fields); err != nil {
			return Entry{}, fmt.Errorf("decode fields: %w", err)
		}
	}
	ts, err := time.Parse(time.RFC3339Nano, publishedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse published_at: %w", err)
	}
	entry.Record.PublishedAt = ts
	return entry, nil
}
