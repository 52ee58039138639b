package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/GlaceYT/E-Canteen/internal/model"
)

// cartView is the JSON shape of the cart.
type cartView struct {
	Lines   []model.CartLine `json:"lines"`
	Items   int              `json:"items"`
	Total   decimal.Decimal  `json:"total"`
	Savings decimal.Decimal  `json:"savings"`
}

func (e *env) cartView() cartView {
	return cartView{
		Lines:   e.app.Cart.Lines(),
		Items:   e.app.Cart.ItemCount(),
		Total:   e.app.Cart.Total(),
		Savings: e.app.Cart.Savings(),
	}
}

// NewCartCommand creates the cart command group. Every subcommand prints
// the cart after it runs.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the student cart",
	}

	cmd.AddCommand(newCartShowCommand(rootOpts))
	cmd.AddCommand(newCartAddCommand(rootOpts, "add", "Add one of a menu item"))
	cmd.AddCommand(newCartAddCommand(rootOpts, "inc", "Increase a line by one"))
	cmd.AddCommand(newCartLineCommand(rootOpts, "dec", "Decrease a line by one; removes it at zero", cartDec))
	cmd.AddCommand(newCartLineCommand(rootOpts, "remove", "Remove a line", cartRemove))
	cmd.AddCommand(newCartClearCommand(rootOpts))
	return cmd
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show cart lines and totals",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				return e.showCart()
			})
		},
	}
}

// newCartAddCommand builds add and inc. A line already in the cart is
// increased from its own snapshot, so items since removed from the menu
// (as reordered lines can be) still increase.
func newCartAddCommand(rootOpts *RootOptions, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <item-id>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				item, ok := e.cartItem(args[0])
				if !ok {
					menuItem, err := e.app.Catalog.Get(e.ctx, args[0])
					if err != nil {
						return e.out.Fail(err)
					}
					if !menuItem.Available {
						return e.out.Fail(&model.ValidationError{
							Field:   "available",
							Message: fmt.Sprintf("%s is not available", menuItem.Name),
						})
					}
					item = menuItem
				}
				if err := e.app.Cart.Add(e.ctx, item); err != nil {
					return e.out.Fail(err)
				}
				return e.showCart()
			})
		},
	}
}

func cartDec(e *env, id string) error    { return e.app.Cart.Decrease(e.ctx, id) }
func cartRemove(e *env, id string) error { return e.app.Cart.Remove(e.ctx, id) }

func newCartLineCommand(rootOpts *RootOptions, use, short string, op func(*env, string) error) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <item-id>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				if err := op(e, args[0]); err != nil {
					return e.out.Fail(err)
				}
				return e.showCart()
			})
		},
	}
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				if err := e.app.Cart.Clear(e.ctx); err != nil {
					return e.out.Fail(err)
				}
				return e.showCart()
			})
		},
	}
}

func (e *env) cartItem(id string) (model.MenuItem, bool) {
	for _, l := range e.app.Cart.Lines() {
		if l.Item.ID == id {
			return l.Item, true
		}
	}
	return model.MenuItem{}, false
}

func (e *env) showCart() error {
	v := e.cartView()
	return e.out.Success(v, e.cartText(v))
}

func (e *env) cartText(v cartView) string {
	if len(v.Lines) == 0 {
		return "Cart is empty.\n"
	}
	var b strings.Builder
	for _, l := range v.Lines {
		fmt.Fprintf(&b, "%3d × %-24s %10s\n", l.Quantity, l.Item.Name, e.money(l.Subtotal()))
		fmt.Fprintf(&b, "      %s\n", l.Item.ID)
	}
	fmt.Fprintf(&b, "Items: %d\n", v.Items)
	if v.Savings.IsPositive() {
		fmt.Fprintf(&b, "You save: %s\n", e.money(v.Savings))
	}
	fmt.Fprintf(&b, "Total: %s\n", e.money(v.Total))
	return b.String()
}
