package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/GlaceYT/E-Canteen/internal/ids"
	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// ErrItemNotFound is returned when no menu item has the requested id.
var ErrItemNotFound = errors.New("menu item not found")

// Store is the subset of *store.Store the catalog needs.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Apply(ctx context.Context, label string, writes ...store.Write) error
}

// Catalog reads and edits the menu. Every edit rewrites the whole
// collection.
//
// Thread-safety: edits are serialised by an internal mutex.
type Catalog struct {
	mu  sync.Mutex
	st  Store
	ids ids.Generator
	log *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithIDGenerator overrides the UUIDv7 item id generator.
func WithIDGenerator(g ids.Generator) Option {
	return func(c *Catalog) { c.ids = g }
}

// WithLogger sets the logger. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

// New creates a Catalog over st.
func New(st Store, opts ...Option) *Catalog {
	c := &Catalog{
		st:  st,
		ids: ids.UUIDv7Generator{},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every item in catalog order. An absent collection is empty.
func (c *Catalog) List(ctx context.Context) ([]model.MenuItem, error) {
	items := []model.MenuItem{}
	if _, err := c.st.Get(ctx, model.KeyMenuItems, &items); err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	return items, nil
}

// Get returns the item with id.
func (c *Catalog) Get(ctx context.Context, id string) (model.MenuItem, error) {
	items, err := c.List(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return model.MenuItem{}, fmt.Errorf("%w: %q", ErrItemNotFound, id)
}

// Add normalises and validates item, assigns it a fresh id and appends it.
// Any id on the input is ignored.
func (c *Catalog) Add(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		return model.MenuItem{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	item.ID = c.ids.Generate()
	items = append(items, item)

	if err := c.st.Apply(ctx, "menu add", store.Set(model.KeyMenuItems, items)); err != nil {
		return model.MenuItem{}, fmt.Errorf("add menu item: %w", err)
	}
	c.log.Info("menu item added", "item_id", item.ID, "name", item.Name)
	return item, nil
}

// Update replaces the item sharing item.ID, keeping its position.
func (c *Catalog) Update(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	item = item.Normalize()
	if err := item.Validate(); err != nil {
		return model.MenuItem{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	i := indexOf(items, item.ID)
	if i < 0 {
		return model.MenuItem{}, fmt.Errorf("%w: %q", ErrItemNotFound, item.ID)
	}
	items[i] = item

	if err := c.st.Apply(ctx, "menu update", store.Set(model.KeyMenuItems, items)); err != nil {
		return model.MenuItem{}, fmt.Errorf("update menu item: %w", err)
	}
	c.log.Info("menu item updated", "item_id", item.ID)
	return item, nil
}

// Delete removes the item with id. Carts and orders that captured it keep
// their snapshots.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	items = append(items[:i], items[i+1:]...)

	if err := c.st.Apply(ctx, "menu delete", store.Set(model.KeyMenuItems, items)); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	c.log.Info("menu item deleted", "item_id", id)
	return nil
}

// Import upserts items by id in a single batch: known ids are replaced in
// place, new ids are appended in the given order. Every item is validated
// before anything is written.
func (c *Catalog) Import(ctx context.Context, incoming []model.MenuItem) (added, updated int, err error) {
	normalized := make([]model.MenuItem, len(incoming))
	for i, item := range incoming {
		item = item.Normalize()
		if item.ID == "" {
			return 0, 0, &model.ValidationError{Field: "id", Message: "id is required for import"}
		}
		if err := item.Validate(); err != nil {
			return 0, 0, fmt.Errorf("item %q: %w", item.ID, err)
		}
		normalized[i] = item
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, item := range normalized {
		if i := indexOf(items, item.ID); i >= 0 {
			items[i] = item
			updated++
			continue
		}
		items = append(items, item)
		added++
	}

	if err := c.st.Apply(ctx, "menu import", store.Set(model.KeyMenuItems, items)); err != nil {
		return 0, 0, fmt.Errorf("import menu: %w", err)
	}
	c.log.Info("menu imported", "added", added, "updated", updated)
	return added, updated, nil
}

func indexOf(items []model.MenuItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
