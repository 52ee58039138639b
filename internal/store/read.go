package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// JournalEntry is one committed batch.
type JournalEntry struct {
	Seq   int64    `json:"seq"`
	Label string   `json:"label"`
	Keys  []string `json:"keys"`
}

// Get decodes the value stored under key into dst.
//
// found is false when the key was never set or has been removed; dst is
// then left untouched. A stored value that does not decode into dst is a
// *StorageError.
func (s *Store) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "get", Key: key, Err: err}
	}

	if err := unmarshalValue(raw, dst); err != nil {
		return false, &StorageError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

// Keys returns all stored keys in byte order.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key COLLATE BINARY ASC`)
	if err != nil {
		return nil, &StorageError{Op: "keys", Err: err}
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &StorageError{Op: "keys", Err: fmt.Errorf("scan: %w", err)}
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "keys", Err: fmt.Errorf("iterate: %w", err)}
	}
	return keys, nil
}

// JournalQuery selects journal entries.
type JournalQuery struct {
	AfterSeq int64  // only entries with seq > AfterSeq
	Label    string // exact label match; empty matches all
	Limit    int    // <= 0 means no limit
}

// Journal returns matching entries in seq order.
func (s *Store) Journal(ctx context.Context, q JournalQuery) ([]JournalEntry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, label, keys
		FROM journal
		WHERE seq > ? AND (? = '' OR label = ?)
		ORDER BY seq ASC
		LIMIT ?
	`, q.AfterSeq, q.Label, q.Label, limit)
	if err != nil {
		return nil, &StorageError{Op: "journal", Err: err}
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var (
			e       JournalEntry
			keysRaw string
		)
		if err := rows.Scan(&e.Seq, &e.Label, &keysRaw); err != nil {
			return nil, &StorageError{Op: "journal", Err: fmt.Errorf("scan: %w", err)}
		}
		e.Keys, err = unmarshalKeys(keysRaw)
		if err != nil {
			return nil, &StorageError{Op: "journal", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "journal", Err: fmt.Errorf("iterate: %w", err)}
	}
	return entries, nil
}

// LastSeq returns the highest journal seq, or 0 for an empty journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM journal`).Scan(&seq); err != nil {
		return 0, &StorageError{Op: "journal", Err: err}
	}
	return seq.Int64, nil
}
