package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GlaceYT/E-Canteen/internal/model"
)

// NewOrderCommand creates the order command group.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place and manage orders",
		Long: `Place orders and follow them through the kitchen.

Orders move forward only: Received, Preparing, Finished. Finishing an
order also copies it into the order history.`,
	}

	cmd.AddCommand(newOrderCheckoutCommand(rootOpts))
	cmd.AddCommand(newOrderListCommand(rootOpts, "active", "List active orders", false))
	cmd.AddCommand(newOrderListCommand(rootOpts, "history", "List finished orders", true))
	cmd.AddCommand(newOrderCurrentCommand(rootOpts))
	cmd.AddCommand(newOrderStatusCommand(rootOpts))
	cmd.AddCommand(newOrderFinishCommand(rootOpts))
	cmd.AddCommand(newOrderDeleteCommand(rootOpts, "delete", "Delete an active order (admin)", model.RoleAdmin, false))
	cmd.AddCommand(newOrderDeleteCommand(rootOpts, "forget", "Delete an order from history", model.RoleStudent, true))
	cmd.AddCommand(newOrderAgainCommand(rootOpts))
	return cmd
}

func newOrderCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the cart",
		Long: `Turn the cart into a Received order and empty the cart.

The order records the session email and the price each item had at this
moment; later menu edits do not change it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				order, err := e.app.Orders.Checkout(e.ctx, e.app.Cart, e.app.Session.Current().Email)
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(order, fmt.Sprintf("Order placed: %s\n", order.ID)+e.orderText(order))
			})
		},
	}
}

func newOrderListCommand(rootOpts *RootOptions, use, short string, history bool) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.requireLogin(); err != nil {
					return err
				}
				list := e.app.Orders.Active
				if history {
					list = e.app.Orders.History
				}
				orders, err := list(e.ctx)
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(orders, e.ordersText(orders))
			})
		},
	}
}

func newOrderCurrentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "current",
		Short:         "Show the most recent active order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.requireLogin(); err != nil {
					return err
				}
				order, err := e.app.Orders.Current(e.ctx)
				if err != nil {
					return e.out.Fail(err)
				}
				if order == nil {
					return e.out.Success(nil, "No active order.\n")
				}
				return e.out.Success(order, e.orderText(*order))
			})
		},
	}
}

func newOrderStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <Received|Preparing|Finished>",
		Short: "Move an order forward (admin)",
		Long: `Set an active order's status. Moving to Finished also records the
order in history, exactly like "order finish".

Examples:
  canteen order status 0192... Preparing
  canteen order status 0192... finished`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleAdmin); err != nil {
					return err
				}
				status, err := model.ParseStatus(args[1])
				if err != nil {
					return e.out.Fail(badArg("%v", err))
				}
				var order model.Order
				if status == model.StatusFinished {
					order, err = e.app.Orders.Finish(e.ctx, args[0])
				} else {
					order, err = e.app.Orders.SetStatus(e.ctx, args[0], status)
				}
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(order, fmt.Sprintf("Order %s is %s\n", order.ID, order.Status))
			})
		},
	}
}

func newOrderFinishCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "finish <order-id>",
		Short:         "Mark an order Finished and record it in history (admin)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleAdmin); err != nil {
					return err
				}
				order, err := e.app.Orders.Finish(e.ctx, args[0])
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(order, fmt.Sprintf("Order %s is %s\n", order.ID, order.Status))
			})
		},
	}
}

func newOrderDeleteCommand(rootOpts *RootOptions, use, short string, role model.Role, history bool) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <order-id>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(role); err != nil {
					return err
				}
				del := e.app.Orders.DeleteActive
				if history {
					del = e.app.Orders.DeleteHistory
				}
				if err := del(e.ctx, args[0]); err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(map[string]string{"id": args[0]}, fmt.Sprintf("Deleted order %s\n", args[0]))
			})
		},
	}
}

func newOrderAgainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "again <order-id>",
		Short: "Put a past order's items back into the cart",
		Long: `Add every line of a history order to the cart. Lines already in the
cart go up by one; others are added with the ordered quantity at the
price paid for them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				order, err := e.app.Orders.FindHistory(e.ctx, args[0])
				if err != nil {
					return e.out.Fail(err)
				}
				if err := e.app.Orders.Reorder(e.ctx, e.app.Cart, order); err != nil {
					return e.out.Fail(err)
				}
				return e.showCart()
			})
		},
	}
}

func (e *env) ordersText(orders []model.Order) string {
	if len(orders) == 0 {
		return "No orders.\n"
	}
	var b strings.Builder
	for i, o := range orders {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.orderText(o))
	}
	return b.String()
}

func (e *env) orderText(o model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s  [%s]  %s\n", o.ID, o.Status, o.Email)
	for _, li := range o.Items {
		fmt.Fprintf(&b, "  %3d × %-24s %10s\n", li.Quantity, li.Name, e.money(li.Subtotal()))
	}
	fmt.Fprintf(&b, "  Items: %d  Total: %s\n", o.ItemCount(), e.money(o.Total))
	return b.String()
}
