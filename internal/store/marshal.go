package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalValue serialises v as compact JSON without HTML escaping, so names
// like "Mac & Cheese" are stored verbatim.
func marshalValue(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unmarshalValue decodes a stored blob into dst.
func unmarshalValue(raw string, dst any) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}

// marshalKeys serialises the key list recorded in a journal entry.
func marshalKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	return marshalValue(keys)
}

func unmarshalKeys(raw string) ([]string, error) {
	var keys []string
	if err := unmarshalValue(raw, &keys); err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}
