package ordering

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/GlaceYT/E-Canteen/internal/ids"
	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// DefaultGuestEmail is recorded on orders placed without a known purchaser.
const DefaultGuestEmail = "guest@canteen.local"

// Manager owns the activeOrders and historyOrders collections.
//
// Thread-safety: operations are serialised by an internal mutex, which
// closes the lost-update window between concurrent read-modify-writes in
// one process.
type Manager struct {
	mu         sync.Mutex
	st         Store
	ids        ids.Generator
	log        *slog.Logger
	guestEmail string
}

// Option configures a Manager.
type Option func(*Manager)

// WithIDGenerator overrides the UUIDv7 order id generator.
func WithIDGenerator(g ids.Generator) Option {
	return func(m *Manager) { m.ids = g }
}

// WithLogger sets the logger. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithGuestEmail sets the placeholder purchaser for orders placed without an
// email.
func WithGuestEmail(email string) Option {
	return func(m *Manager) { m.guestEmail = email }
}

// NewManager creates a Manager over st.
func NewManager(st Store, opts ...Option) *Manager {
	m := &Manager{
		st:         st,
		ids:        ids.UUIDv7Generator{},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		guestEmail: DefaultGuestEmail,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Active returns the active orders in placement order.
func (m *Manager) Active(ctx context.Context) ([]model.Order, error) {
	return m.read(ctx, model.KeyActiveOrders)
}

// History returns the archived orders in archive order.
func (m *Manager) History(ctx context.Context) ([]model.Order, error) {
	return m.read(ctx, model.KeyHistoryOrders)
}

// Current returns the most recently placed active order, or nil when there
// is none.
func (m *Manager) Current(ctx context.Context) (*model.Order, error) {
	active, err := m.Active(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	o := active[len(active)-1]
	return &o, nil
}

// Get returns the active order with id.
func (m *Manager) Get(ctx context.Context, id string) (model.Order, error) {
	return m.find(ctx, model.KeyActiveOrders, id)
}

// FindHistory returns the archived order with id.
func (m *Manager) FindHistory(ctx context.Context, id string) (model.Order, error) {
	return m.find(ctx, model.KeyHistoryOrders, id)
}

// Checkout converts the cart into a Received order, appends it to the
// active orders and empties the cart, all in one batch.
//
// Returns ErrEmptyCart, writing nothing, when the cart has no lines.
func (m *Manager) Checkout(ctx context.Context, cart *Cart, email string) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if len(cart.lines) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	email = strings.TrimSpace(email)
	if email == "" {
		email = m.guestEmail
	}

	items := make([]model.OrderLineItem, len(cart.lines))
	for i, l := range cart.lines {
		items[i] = l.Snapshot()
	}
	order := model.Order{
		ID:     m.ids.Generate(),
		Email:  email,
		Items:  items,
		Total:  totalOf(cart.lines),
		Status: model.StatusReceived,
	}

	active, err := m.read(ctx, model.KeyActiveOrders)
	if err != nil {
		return model.Order{}, fmt.Errorf("checkout: %w", err)
	}
	active = append(active, order)

	if err := cart.commit(ctx, "checkout", []model.CartLine{}, store.Set(model.KeyActiveOrders, active)); err != nil {
		return model.Order{}, err
	}

	m.log.Info("order placed",
		"order_id", order.ID,
		"email", order.Email,
		"items", order.ItemCount(),
		"total", order.Total.String(),
	)
	return order.Clone(), nil
}

// SetStatus moves an active order to status.
//
// Setting the status an order already has is a no-op. Every change out of
// Finished and every backwards move is a *TransitionError. Finished itself
// is also refused here, since only Finish writes the history copy. The
// order keeps its position and all other fields.
func (m *Manager) SetStatus(ctx context.Context, id string, status model.Status) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, i, err := m.locate(ctx, id)
	if err != nil {
		return model.Order{}, err
	}

	order := active[i]
	if order.Status == status && !status.Terminal() {
		return order, nil
	}
	if status.Terminal() || !order.Status.CanTransitionTo(status) {
		return model.Order{}, &TransitionError{ID: id, From: order.Status, To: status}
	}

	active[i].Status = status
	if err := m.st.Apply(ctx, "order status", store.Set(model.KeyActiveOrders, active)); err != nil {
		return model.Order{}, fmt.Errorf("order status: %w", err)
	}

	m.log.Info("order status changed", "order_id", id, "from", order.Status, "to", status)
	return active[i].Clone(), nil
}

// Finish marks an active order Finished and appends a copy to history in
// the same batch. The order stays in the active list until DeleteActive.
func (m *Manager) Finish(ctx context.Context, id string) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, i, err := m.locate(ctx, id)
	if err != nil {
		return model.Order{}, err
	}

	from := active[i].Status
	if !from.CanTransitionTo(model.StatusFinished) {
		return model.Order{}, &TransitionError{ID: id, From: from, To: model.StatusFinished}
	}
	active[i].Status = model.StatusFinished

	history, err := m.read(ctx, model.KeyHistoryOrders)
	if err != nil {
		return model.Order{}, fmt.Errorf("finish order: %w", err)
	}
	history = append(history, active[i].Clone())

	err = m.st.Apply(ctx, "order finish",
		store.Set(model.KeyActiveOrders, active),
		store.Set(model.KeyHistoryOrders, history),
	)
	if err != nil {
		return model.Order{}, fmt.Errorf("finish order: %w", err)
	}

	m.log.Info("order finished", "order_id", id, "from", from)
	return active[i].Clone(), nil
}

// DeleteActive removes an order from the active list. History is untouched.
func (m *Manager) DeleteActive(ctx context.Context, id string) error {
	return m.delete(ctx, model.KeyActiveOrders, id)
}

// DeleteHistory removes an order from history. Active orders are untouched.
func (m *Manager) DeleteHistory(ctx context.Context, id string) error {
	return m.delete(ctx, model.KeyHistoryOrders, id)
}

// Reorder adds a historical order's lines back into the cart.
//
// A line whose item is already in the cart raises that line by one. Any
// other line is inserted with the order's quantity, rebuilt from the
// snapshot: the unit price paid becomes the base price, and category,
// description, tag and veg are lost (empty, empty, none, false). The cart
// is written once.
func (m *Manager) Reorder(ctx context.Context, cart *Cart, order model.Order) error {
	cart.mu.Lock()
	defer cart.mu.Unlock()

	next := cloneLines(cart.lines)
	for _, li := range order.Items {
		if i := indexOf(next, li.ID); i >= 0 {
			next[i].Quantity++
			continue
		}
		qty := li.Quantity
		if qty < 1 {
			qty = 1
		}
		next = append(next, model.CartLine{Item: itemFromSnapshot(li), Quantity: qty})
	}

	if err := cart.commit(ctx, "reorder", next); err != nil {
		return err
	}
	m.log.Info("order added to cart again", "order_id", order.ID, "lines", len(order.Items))
	return nil
}

func itemFromSnapshot(li model.OrderLineItem) model.MenuItem {
	return model.MenuItem{
		ID:        li.ID,
		Name:      li.Name,
		Price:     li.Price,
		Available: true,
		Image:     li.Image,
	}
}

func (m *Manager) delete(ctx context.Context, key, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.read(ctx, key)
	if err != nil {
		return err
	}

	kept := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(orders) {
		return &OrderNotFoundError{ID: id, Collection: key}
	}

	if err := m.st.Apply(ctx, "delete "+key, store.Set(key, kept)); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	m.log.Info("order deleted", "order_id", id, "collection", key)
	return nil
}

// locate reads the active orders and returns the index of id.
func (m *Manager) locate(ctx context.Context, id string) ([]model.Order, int, error) {
	active, err := m.read(ctx, model.KeyActiveOrders)
	if err != nil {
		return nil, -1, err
	}
	for i, o := range active {
		if o.ID == id {
			return active, i, nil
		}
	}
	return nil, -1, &OrderNotFoundError{ID: id, Collection: model.KeyActiveOrders}
}

func (m *Manager) find(ctx context.Context, key, id string) (model.Order, error) {
	orders, err := m.read(ctx, key)
	if err != nil {
		return model.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.Order{}, &OrderNotFoundError{ID: id, Collection: key}
}

// read loads an order collection; an absent key is an empty list.
func (m *Manager) read(ctx context.Context, key string) ([]model.Order, error) {
	orders := []model.Order{}
	if _, err := m.st.Get(ctx, key, &orders); err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
