package store

import (
	"context"
	"fmt"
)

// Write is one element of a batch: either a put of Value under Key or, when
// Delete is set, a removal of Key.
type Write struct {
	Key    string
	Value  any
	Delete bool
}

// Set returns a Write that stores value under key.
func Set(key string, value any) Write {
	return Write{Key: key, Value: value}
}

// Delete returns a Write that removes key.
func Delete(key string) Write {
	return Write{Key: key, Delete: true}
}

// Put serialises value and stores it under key, overwriting any prior value.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	return s.Apply(ctx, "put "+key, Set(key, value))
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, "remove "+key, Delete(key))
}

// Apply commits writes atomically and journals them under label.
//
// All values are serialised before the transaction starts; an encoding
// failure therefore writes nothing. An empty batch is a no-op and is not
// journaled.
func (s *Store) Apply(ctx context.Context, label string, writes ...Write) error {
	if len(writes) == 0 {
		return nil
	}

	encoded := make([]string, len(writes))
	keys := make([]string, len(writes))
	for i, w := range writes {
		keys[i] = w.Key
		if w.Delete {
			continue
		}
		raw, err := marshalValue(w.Value)
		if err != nil {
			return &StorageError{Op: "encode", Key: w.Key, Err: err}
		}
		encoded[i] = raw
	}

	keysJSON, err := marshalKeys(keys)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "apply", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO journal (label, keys) VALUES (?, ?)
	`, label, keysJSON)
	if err != nil {
		return &StorageError{Op: "apply", Err: fmt.Errorf("journal: %w", err)}
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return &StorageError{Op: "apply", Err: fmt.Errorf("journal seq: %w", err)}
	}

	for i, w := range writes {
		if w.Delete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, w.Key); err != nil {
				return &StorageError{Op: "remove", Key: w.Key, Err: err}
			}
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, seq) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, seq = excluded.seq
		`, w.Key, encoded[i], seq)
		if err != nil {
			return &StorageError{Op: "put", Key: w.Key, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "apply", Err: fmt.Errorf("commit: %w", err)}
	}

	return nil
}
