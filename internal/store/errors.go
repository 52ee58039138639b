package store

import (
	"errors"
	"fmt"
)

// StorageError reports a failed read, write or (de)serialisation.
// It is never retried by the store; callers see it as-is.
type StorageError struct {
	Op  string // "get", "put", "remove", "decode", "encode", "apply", ...
	Key string // empty for whole-batch failures
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError returns true if err is or wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
