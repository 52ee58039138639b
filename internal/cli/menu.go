package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/GlaceYT/E-Canteen/internal/catalog"
	"github.com/GlaceYT/E-Canteen/internal/model"
)

// MenuListOptions holds flags for menu list.
type MenuListOptions struct {
	*RootOptions
	Query  string
	Veg    bool
	NonVeg bool
	Sort   string
	All    bool // include unavailable items for students
}

// itemFlags are the editable menu item fields shared by add and edit.
type itemFlags struct {
	Name        string
	Category    string
	Price       string
	Discount    string
	NoDiscount  bool
	Available   bool
	Veg         bool
	Description string
	Tag         string
	Image       string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Name, "name", "", "item name")
	cmd.Flags().StringVar(&f.Category, "category", "", "menu category")
	cmd.Flags().StringVar(&f.Price, "price", "", "base price, e.g. 45 or 12.50")
	cmd.Flags().StringVar(&f.Discount, "discount", "", "discounted price (must not exceed price)")
	cmd.Flags().BoolVar(&f.Available, "available", true, "item can be ordered")
	cmd.Flags().BoolVar(&f.Veg, "veg", false, "vegetarian item")
	cmd.Flags().StringVar(&f.Description, "description", "", "short description")
	cmd.Flags().StringVar(&f.Tag, "tag", "", "highlight label: \"Best Seller\", \"Popular\" or \"New Item\"")
	cmd.Flags().StringVar(&f.Image, "image", "", "image URL or path")
}

// apply copies the flags the user set onto item. Unset flags keep item's
// values, so the same code serves add (from zero) and edit (from stored).
func (f *itemFlags) apply(cmd *cobra.Command, item model.MenuItem) (model.MenuItem, error) {
	changed := cmd.Flags().Changed
	if changed("name") {
		item.Name = f.Name
	}
	if changed("category") {
		item.Category = f.Category
	}
	if changed("price") {
		p, err := model.ParsePrice(f.Price)
		if err != nil {
			return item, badArg("--price: %v", err)
		}
		item.Price = p
	}
	if changed("discount") {
		d, err := model.ParsePrice(f.Discount)
		if err != nil {
			return item, badArg("--discount: %v", err)
		}
		item.DiscountedPrice = &d
	}
	if f.NoDiscount {
		item.DiscountedPrice = nil
	}
	if changed("available") {
		item.Available = f.Available
	}
	if changed("veg") {
		item.Veg = f.Veg
	}
	if changed("description") {
		item.Description = f.Description
	}
	if changed("tag") {
		item.Tag = model.Tag(f.Tag)
	}
	if changed("image") {
		item.Image = f.Image
	}
	return item, nil
}

// NewMenuCommand creates the menu command group.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Browse and edit the menu",
		Long: `Browse the canteen menu. Admins can add, edit, delete and bulk-import
items; import reads a CUE package declaring menu: [id]: {...}.`,
	}

	cmd.AddCommand(newMenuListCommand(rootOpts))
	cmd.AddCommand(newMenuShowCommand(rootOpts))
	cmd.AddCommand(newMenuAddCommand(rootOpts))
	cmd.AddCommand(newMenuEditCommand(rootOpts))
	cmd.AddCommand(newMenuDeleteCommand(rootOpts))
	cmd.AddCommand(newMenuImportCommand(rootOpts))
	return cmd
}

func newMenuListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MenuListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List menu items",
		Long: `List menu items with optional search, veg filter and price sort.

Students only see available items unless --all is given.

Examples:
  canteen menu list
  canteen menu list --query dosa --veg
  canteen menu list --sort low --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				sortOrder, err := catalog.ParseSortOrder(opts.Sort)
				if err != nil {
					return e.out.Fail(badArg("--sort: %v", err))
				}
				items, err := e.app.Catalog.List(e.ctx)
				if err != nil {
					return e.out.Fail(err)
				}
				student := e.app.Session.Current().Role != model.RoleAdmin
				items = catalog.Search(items, catalog.Filter{
					Query:         opts.Query,
					Veg:           opts.Veg,
					NonVeg:        opts.NonVeg,
					Sort:          sortOrder,
					AvailableOnly: student && !opts.All,
				})
				return e.out.Success(items, e.menuText(items))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "case-insensitive name search")
	cmd.Flags().BoolVar(&opts.Veg, "veg", false, "only vegetarian items")
	cmd.Flags().BoolVar(&opts.NonVeg, "nonveg", false, "only non-vegetarian items")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort by price: low or high")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include unavailable items")
	return cmd
}

func newMenuShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <item-id>",
		Short:         "Show one menu item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				item, err := e.app.Catalog.Get(e.ctx, args[0])
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(item, e.itemText(item))
			})
		},
	}
}

func newMenuAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a menu item (admin)",
		Long: `Add a menu item. Name, category and price are required.

Examples:
  canteen menu add --name "Masala Dosa" --category "South Indian" --price 60 --veg
  canteen menu add --name "Chicken Biryani" --category Rice --price 150 --discount 129.50 --tag Popular`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleAdmin); err != nil {
					return err
				}
				if !cmd.Flags().Changed("price") {
					return e.out.Fail(badArg("--price is required"))
				}
				item, err := flags.apply(cmd, model.MenuItem{Available: true, Price: decimal.Zero})
				if err != nil {
					return e.out.Fail(err)
				}
				added, err := e.app.Catalog.Add(e.ctx, item)
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(added, fmt.Sprintf("Added %s (%s)\n", added.Name, added.ID))
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newMenuEditCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Edit a menu item (admin)",
		Long: `Change the given fields of a menu item; other fields keep their values.

Examples:
  canteen menu edit 0192... --price 65
  canteen menu edit 0192... --available=false
  canteen menu edit 0192... --no-discount`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleAdmin); err != nil {
					return err
				}
				item, err := e.app.Catalog.Get(e.ctx, args[0])
				if err != nil {
					return e.out.Fail(err)
				}
				item, err = flags.apply(cmd, item)
				if err != nil {
					return e.out.Fail(err)
				}
				updated, err := e.app.Catalog.Update(e.ctx, item)
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(updated, fmt.Sprintf("Updated %s (%s)\n", updated.Name, updated.ID))
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.NoDiscount, "no-discount", false, "remove the discounted price")
	return cmd
}

func newMenuDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <item-id>",
		Short:         "Delete a menu item (admin)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleAdmin); err != nil {
					return err
				}
				if err := e.app.Catalog.Delete(e.ctx, args[0]); err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(map[string]string{"id": args[0]}, fmt.Sprintf("Deleted %s\n", args[0]))
			})
		},
	}
}

// importResult is the JSON shape of menu import.
type importResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

func newMenuImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <cue-dir>",
		Short: "Import menu items from a CUE package (admin)",
		Long: `Load every item declared under menu: in the CUE package at <cue-dir>,
check it against the menu schema and upsert it by id in one batch.

Example menu.cue:
  package menu

  menu: "masala-dosa": {
      name:     "Masala Dosa"
      category: "South Indian"
      price:    60
      veg:      true
      tag:      "Best Seller"
  }`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleAdmin); err != nil {
					return err
				}
				items, err := catalog.LoadCUE(args[0])
				if err != nil {
					return e.out.Fail(err)
				}
				added, updated, err := e.app.Catalog.Import(e.ctx, items)
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(importResult{Added: added, Updated: updated},
					fmt.Sprintf("Imported %d items (%d added, %d updated)\n", added+updated, added, updated))
			})
		},
	}
}

// menuText renders a menu listing.
func (e *env) menuText(items []model.MenuItem) string {
	if len(items) == 0 {
		return "No menu items.\n"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s  %-24s %-14s %s", vegMark(it), it.Name, it.Category, e.priceText(it))
		if it.Tag != "" {
			fmt.Fprintf(&b, "  [%s]", it.Tag)
		}
		if !it.Available {
			b.WriteString("  (unavailable)")
		}
		if e.app.Favorites.Contains(it.ID) {
			b.WriteString("  ♥")
		}
		fmt.Fprintf(&b, "\n    %s\n", it.ID)
	}
	return b.String()
}

// itemText renders one item with all fields.
func (e *env) itemText(it model.MenuItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", vegMark(it), it.Name)
	fmt.Fprintf(&b, "  ID:        %s\n", it.ID)
	fmt.Fprintf(&b, "  Category:  %s\n", it.Category)
	fmt.Fprintf(&b, "  Price:     %s\n", e.priceText(it))
	fmt.Fprintf(&b, "  Available: %t\n", it.Available)
	if it.Tag != "" {
		fmt.Fprintf(&b, "  Tag:       %s\n", it.Tag)
	}
	if it.Description != "" {
		fmt.Fprintf(&b, "  About:     %s\n", it.Description)
	}
	if it.Image != "" {
		fmt.Fprintf(&b, "  Image:     %s\n", it.Image)
	}
	return b.String()
}

func (e *env) priceText(it model.MenuItem) string {
	if it.DiscountedPrice == nil {
		return e.money(it.Price)
	}
	return fmt.Sprintf("%s (was %s)", e.money(*it.DiscountedPrice), e.money(it.Price))
}

func vegMark(it model.MenuItem) string {
	if it.Veg {
		return "[V]"
	}
	return "[N]"
}
