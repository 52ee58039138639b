package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GlaceYT/E-Canteen/internal/app"
	"github.com/GlaceYT/E-Canteen/internal/config"
	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/session"
	"github.com/GlaceYT/E-Canteen/internal/testutil"
)

// Harness executes the steps of one scenario.
type Harness struct {
	app    *app.App
	names  map[string]string // as-bindings to generated ids
	logger *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes component and step logs to l. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// sequence id generators for reproducible traces. A failing step does not
// stop the run; it is recorded in the trace and, unless expected, in
// Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		names:  make(map[string]string),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Database = ":memory:"

	a, err := app.Open(ctx, cfg,
		app.WithLogger(h.logger),
		app.WithIDGenerators(testutil.NewSequenceGenerator("item"), testutil.NewSequenceGenerator("order")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory app: %w", err)
	}
	defer a.Close()
	h.app = a

	result := NewResult()
	for i, step := range scenario.Steps {
		out, stepErr := h.execute(ctx, step)

		ev := TraceEvent{Op: step.Op, Args: step.Args, Outcome: OutcomeOK, Result: out}
		if stepErr != nil {
			ev.Outcome = OutcomeError
			ev.Error = ErrorKind(stepErr)
			ev.Result = nil
		}
		result.addTrace(ev)

		switch {
		case stepErr == nil && step.ExpectError != "":
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got success", i, step.Op, step.ExpectError))
		case stepErr != nil && step.ExpectError == "":
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Op, stepErr))
		case stepErr != nil && ev.Error != step.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s: %v", i, step.Op, step.ExpectError, ev.Error, stepErr))
		}

		h.logger.Info("scenario step completed",
			"step", i,
			"op", step.Op,
			"outcome", ev.Outcome,
			"error_kind", ev.Error,
		)
	}

	actx := &AssertionContext{App: a, Ctx: ctx, Names: h.names}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// execute performs one step and returns the values recorded in its trace.
func (h *Harness) execute(ctx context.Context, step Step) (map[string]any, error) {
	a := h.app
	args := stepArgs(step.Args)

	switch step.Op {
	case OpLogin:
		roleName, err := args.str("role")
		if err != nil {
			return nil, err
		}
		role, err := model.ParseRole(roleName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", session.ErrInvalidLogin, err)
		}
		email, _ := args.optStr("email")
		id, err := a.Session.Login(ctx, role, email)
		if err != nil {
			return nil, err
		}
		return map[string]any{"role": string(id.Role), "email": id.Email}, nil

	case OpLogout:
		return nil, a.Session.Logout(ctx)

	case OpMenuAdd:
		item, err := args.menuItem()
		if err != nil {
			return nil, err
		}
		added, err := a.Catalog.Add(ctx, item)
		if err != nil {
			return nil, err
		}
		h.bind(step.As, added.ID)
		return map[string]any{"id": added.ID, "name": added.Name}, nil

	case OpMenuDelete:
		id, err := h.ref(args, "item")
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id}, a.Catalog.Delete(ctx, id)

	case OpCartAdd:
		id, err := h.ref(args, "item")
		if err != nil {
			return nil, err
		}
		item, err := a.Catalog.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := a.Cart.Add(ctx, item); err != nil {
			return nil, err
		}
		return h.cartSummary(), nil

	case OpCartDec, OpCartRemove:
		id, err := h.ref(args, "item")
		if err != nil {
			return nil, err
		}
		if step.Op == OpCartDec {
			err = a.Cart.Decrease(ctx, id)
		} else {
			err = a.Cart.Remove(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		return h.cartSummary(), nil

	case OpCartClear:
		if err := a.Cart.Clear(ctx); err != nil {
			return nil, err
		}
		return h.cartSummary(), nil

	case OpCheckout:
		email, ok := args.optStr("email")
		if !ok {
			email = a.Session.Current().Email
		}
		order, err := a.Orders.Checkout(ctx, a.Cart, email)
		if err != nil {
			return nil, err
		}
		h.bind(step.As, order.ID)
		return map[string]any{
			"order": order.ID,
			"email": order.Email,
			"items": order.ItemCount(),
			"total": order.Total.String(),
		}, nil

	case OpSetStatus:
		id, err := h.ref(args, "order")
		if err != nil {
			return nil, err
		}
		name, err := args.str("status")
		if err != nil {
			return nil, err
		}
		status, err := model.ParseStatus(name)
		if err != nil {
			return nil, &argError{msg: err.Error()}
		}
		order, err := a.Orders.SetStatus(ctx, id, status)
		if err != nil {
			return nil, err
		}
		return map[string]any{"order": order.ID, "status": string(order.Status)}, nil

	case OpFinish:
		id, err := h.ref(args, "order")
		if err != nil {
			return nil, err
		}
		order, err := a.Orders.Finish(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"order": order.ID, "status": string(order.Status)}, nil

	case OpDeleteActive, OpDeleteHistory:
		id, err := h.ref(args, "order")
		if err != nil {
			return nil, err
		}
		if step.Op == OpDeleteActive {
			err = a.Orders.DeleteActive(ctx, id)
		} else {
			err = a.Orders.DeleteHistory(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"order": id}, nil

	case OpReorder:
		id, err := h.ref(args, "order")
		if err != nil {
			return nil, err
		}
		order, err := a.Orders.FindHistory(ctx, id)
		if err != nil {
			order, err = a.Orders.Get(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		if err := a.Orders.Reorder(ctx, a.Cart, order); err != nil {
			return nil, err
		}
		return h.cartSummary(), nil

	case OpFavToggle:
		id, err := h.ref(args, "item")
		if err != nil {
			return nil, err
		}
		on, err := a.Favorites.Toggle(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"item": id, "favorite": on}, nil

	default:
		return nil, &argError{msg: fmt.Sprintf("unknown op %q", step.Op)}
	}
}

func (h *Harness) cartSummary() map[string]any {
	c := h.app.Cart
	return map[string]any{
		"lines":   len(c.Lines()),
		"items":   c.ItemCount(),
		"total":   c.Total().String(),
		"savings": c.Savings().String(),
	}
}

func (h *Harness) bind(name, id string) {
	if name != "" {
		h.names[name] = id
	}
}

// ref reads an id argument, resolving bound names.
func (h *Harness) ref(args stepArgs, key string) (string, error) {
	v, err := args.str(key)
	if err != nil {
		return "", err
	}
	return resolve(h.names, v), nil
}

func resolve(names map[string]string, v string) string {
	if id, ok := names[v]; ok {
		return id
	}
	return v
}

// stepArgs wraps YAML-decoded arguments with typed accessors.
type stepArgs map[string]any

func (a stepArgs) str(key string) (string, error) {
	v, ok := a.optStr(key)
	if !ok || v == "" {
		return "", &argError{msg: fmt.Sprintf("argument %q is required", key)}
	}
	return v, nil
}

func (a stepArgs) optStr(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

func (a stepArgs) boolean(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &argError{msg: fmt.Sprintf("argument %q must be a boolean", key)}
	}
	return b, nil
}

// amount accepts a YAML number or string. Numbers are formatted with
// fmt's shortest representation before parsing.
func (a stepArgs) amount(key string) (*decimal.Decimal, error) {
	s, ok := a.optStr(key)
	if !ok {
		return nil, nil
	}
	d, err := model.ParsePrice(s)
	if err != nil {
		return nil, &argError{msg: err.Error()}
	}
	return &d, nil
}

func (a stepArgs) menuItem() (model.MenuItem, error) {
	var (
		item model.MenuItem
		err  error
	)
	item.Name, _ = a.optStr("name")
	item.Category, _ = a.optStr("category")
	item.Description, _ = a.optStr("description")
	tag, _ := a.optStr("tag")
	item.Tag = model.Tag(strings.TrimSpace(tag))

	price, err := a.amount("price")
	if err != nil {
		return item, err
	}
	if price == nil {
		return item, &model.ValidationError{Field: "price", Message: "price is required"}
	}
	item.Price = *price
	if item.DiscountedPrice, err = a.amount("discounted_price"); err != nil {
		return item, err
	}
	if item.Veg, err = a.boolean("veg", false); err != nil {
		return item, err
	}
	if item.Available, err = a.boolean("available", true); err != nil {
		return item, err
	}
	return item, nil
}
