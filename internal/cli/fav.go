package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GlaceYT/E-Canteen/internal/model"
)

// favoriteView is one entry of fav list. Item is nil when the id no
// longer names a menu item.
type favoriteView struct {
	ID   string          `json:"id"`
	Item *model.MenuItem `json:"item,omitempty"`
}

// NewFavCommand creates the fav command group.
func NewFavCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorite menu items",
	}
	cmd.AddCommand(newFavToggleCommand(rootOpts))
	cmd.AddCommand(newFavListCommand(rootOpts))
	return cmd
}

func newFavToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "toggle <item-id>",
		Short:         "Add or remove a favorite",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				id := args[0]
				// Unknown ids may still be un-favorited.
				if !e.app.Favorites.Contains(id) {
					if _, err := e.app.Catalog.Get(e.ctx, id); err != nil {
						return e.out.Fail(err)
					}
				}
				now, err := e.app.Favorites.Toggle(e.ctx, id)
				if err != nil {
					return e.out.Fail(err)
				}
				text := fmt.Sprintf("Removed %s from favorites\n", id)
				if now {
					text = fmt.Sprintf("Added %s to favorites\n", id)
				}
				return e.out.Success(map[string]any{"id": id, "favorite": now}, text)
			})
		},
	}
}

func newFavListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List favorites in the order they were added",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.require(model.RoleStudent); err != nil {
					return err
				}
				favs, err := e.favoriteViews()
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(favs, e.favoritesText(favs))
			})
		},
	}
}

func (e *env) favoriteViews() ([]favoriteView, error) {
	items, err := e.app.Catalog.List(e.ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	ids := e.app.Favorites.IDs()
	out := make([]favoriteView, 0, len(ids))
	for _, id := range ids {
		v := favoriteView{ID: id}
		if it, ok := byID[id]; ok {
			v.Item = &it
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *env) favoritesText(favs []favoriteView) string {
	if len(favs) == 0 {
		return "No favorites.\n"
	}
	var b strings.Builder
	for _, f := range favs {
		if f.Item == nil {
			fmt.Fprintf(&b, "♥ %s (no longer on the menu)\n", f.ID)
			continue
		}
		fmt.Fprintf(&b, "♥ %-24s %s\n    %s\n", f.Item.Name, e.priceText(*f.Item), f.ID)
	}
	return b.String()
}
