// Package favorites keeps the set of menu item ids a student has starred.
package favorites

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// Store is the subset of *store.Store favorites needs.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Apply(ctx context.Context, label string, writes ...store.Write) error
}

// Set is an ordered set of item ids mirrored to the "favorites" key.
// Ids need not refer to existing menu items.
type Set struct {
	mu  sync.Mutex
	st  Store
	log *slog.Logger
	ids []string
}

// Load reads the persisted favorites. An absent key is an empty set;
// duplicate ids in storage collapse to their first occurrence.
func Load(ctx context.Context, st Store, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var stored []string
	if _, err := st.Get(ctx, model.KeyFavorites, &stored); err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	seen := make(map[string]bool, len(stored))
	ids := make([]string, 0, len(stored))
	for _, id := range stored {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return &Set{st: st, log: logger, ids: ids}, nil
}

// Toggle adds id when absent and removes it when present. It reports
// whether id is a favorite afterwards. The set is unchanged if the write
// fails.
func (s *Set) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.ids)+1)
	removed := false
	for _, existing := range s.ids {
		if existing == id {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	if !removed {
		next = append(next, id)
	}

	if err := s.st.Apply(ctx, "favorite toggle", store.Set(model.KeyFavorites, next)); err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	s.ids = next

	s.log.Debug("favorite toggled", "item_id", id, "favorite", !removed)
	return !removed, nil
}

// Contains reports whether id is a favorite.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns the favorites in the order they were added.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
