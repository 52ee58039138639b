package ordering

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// Cart is the current session's cart.
//
// Every mutation is a read-modify-write of the whole "cart" collection. The
// in-memory lines change only after the write succeeds, so a failed write
// leaves the cart exactly as it was.
//
// Thread-safety: mutations are serialised by an internal mutex.
type Cart struct {
	mu    sync.Mutex
	st    Store
	log   *slog.Logger
	lines []model.CartLine
}

// LoadCart reads the persisted cart. An absent key is an empty cart.
// Lines with a non-positive quantity are dropped on load.
func LoadCart(ctx context.Context, st Store, logger *slog.Logger) (*Cart, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var lines []model.CartLine
	if _, err := st.Get(ctx, model.KeyCart, &lines); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	kept := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			logger.Warn("dropping cart line with non-positive quantity", "item_id", l.Item.ID, "quantity", l.Quantity)
			continue
		}
		kept = append(kept, l)
	}

	return &Cart{st: st, log: logger, lines: kept}, nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Quantity returns the quantity for id, 0 if absent.
func (c *Cart) Quantity(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.lines, id); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total is Σ quantity × effective price.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalOf(c.lines)
}

// Savings is Σ quantity × (price − discounted price) over discounted lines.
func (c *Cart) Savings() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Saving())
	}
	return sum
}

// Add increments the line for item.ID, or appends a new line with
// quantity 1. An existing line keeps the snapshot it was added with.
func (c *Cart) Add(ctx context.Context, item model.MenuItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneLines(c.lines)
	if i := indexOf(next, item.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, model.CartLine{Item: item, Quantity: 1})
	}

	if err := c.commit(ctx, "cart add", next); err != nil {
		return err
	}
	c.log.Debug("cart item added", "item_id", item.ID, "quantity", next[indexOf(next, item.ID)].Quantity)
	return nil
}

// Increase is an alias for Add.
func (c *Cart) Increase(ctx context.Context, item model.MenuItem) error {
	return c.Add(ctx, item)
}

// Decrease lowers the quantity for id by one, removing the line when it
// would reach zero. Missing ids are a no-op.
func (c *Cart) Decrease(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.lines, id)
	if i < 0 {
		return nil
	}

	next := cloneLines(c.lines)
	if next[i].Quantity > 1 {
		next[i].Quantity--
	} else {
		next = append(next[:i], next[i+1:]...)
	}

	if err := c.commit(ctx, "cart decrease", next); err != nil {
		return err
	}
	c.log.Debug("cart item decreased", "item_id", id)
	return nil
}

// Remove drops the line for id regardless of its quantity.
// Missing ids are a no-op.
func (c *Cart) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.lines, id)
	if i < 0 {
		return nil
	}

	next := cloneLines(c.lines)
	next = append(next[:i], next[i+1:]...)
	if err := c.commit(ctx, "cart remove", next); err != nil {
		return err
	}
	c.log.Debug("cart item removed", "item_id", id)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(ctx, "cart clear", []model.CartLine{})
}

// commit persists next (plus any extra writes in the same batch) and only
// then installs it as the in-memory state. Caller holds c.mu.
func (c *Cart) commit(ctx context.Context, label string, next []model.CartLine, extra ...store.Write) error {
	writes := append([]store.Write{store.Set(model.KeyCart, next)}, extra...)
	if err := c.st.Apply(ctx, label, writes...); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	c.lines = next
	return nil
}

func indexOf(lines []model.CartLine, id string) int {
	for i, l := range lines {
		if l.Item.ID == id {
			return i
		}
	}
	return -1
}

func cloneLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out
}

func totalOf(lines []model.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
