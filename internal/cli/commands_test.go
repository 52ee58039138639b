package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlaceYT/E-Canteen/internal/model"
)

func TestSessionCommands(t *testing.T) {
	c := newTestCLI(t)

	assert.Contains(t, c.mustRun("whoami"), "Not logged in")

	var id identityView
	_, err := c.runJSON(&id, "login", "Student", " asha@college.edu ")
	require.NoError(t, err)
	assert.True(t, id.LoggedIn)
	assert.Equal(t, "student", id.Role)
	assert.Equal(t, "asha@college.edu", id.Email)

	// The session survives into the next invocation.
	assert.Contains(t, c.mustRun("whoami"), "asha@college.edu (student)")

	c.mustRun("logout")
	assert.Contains(t, c.mustRun("whoami"), "Not logged in")
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	c := newTestCLI(t)

	resp, err := c.runJSON(nil, "login", "chef", "a@b.edu")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeInvalidLogin, resp.Error.Code)

	resp, err = c.runJSON(nil, "login", "student", "not-an-email")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidLogin, resp.Error.Code)
}

func TestMenuAdminCommands(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("login", "admin", "kitchen@college.edu")

	var added model.MenuItem
	_, err := c.runJSON(&added, "menu", "add",
		"--name", "Paneer Roll", "--category", "Snacks", "--price", "40", "--discount", "35", "--veg", "--tag", "New Item")
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	assert.Equal(t, "Paneer Roll", added.Name)
	assert.True(t, added.Available)
	assert.True(t, added.Veg)
	assert.Equal(t, "35", added.EffectivePrice().String())
	assert.Equal(t, model.TagNewItem, added.Tag)

	var updated model.MenuItem
	_, err = c.runJSON(&updated, "menu", "edit", added.ID, "--price", "45", "--no-discount", "--available=false")
	require.NoError(t, err)
	assert.Equal(t, "45", updated.Price.String())
	assert.Nil(t, updated.DiscountedPrice)
	assert.False(t, updated.Available)
	assert.Equal(t, "Paneer Roll", updated.Name, "unset flags keep stored values")

	out := c.mustRun("menu", "show", added.ID)
	assert.Contains(t, out, "Paneer Roll")
	assert.Contains(t, out, "Available: false")

	c.mustRun("menu", "delete", added.ID)

	resp, err := c.runJSON(nil, "menu", "show", added.ID)
	require.Error(t, err)
	assert.Equal(t, ErrCodeItemNotFound, resp.Error.Code)
}

func TestMenuAddValidation(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("login", "admin", "kitchen@college.edu")

	resp, err := c.runJSON(nil, "menu", "add", "--name", "Tea", "--category", "Beverages")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeBadArgs, resp.Error.Code)

	resp, err = c.runJSON(nil, "menu", "add", "--name", "Tea", "--category", "Beverages", "--price", "10", "--discount", "12")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)

	resp, err = c.runJSON(nil, "menu", "add", "--category", "Beverages", "--price", "10")
	require.Error(t, err)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
}

func TestMenuEditsRequireAdmin(t *testing.T) {
	c := newTestCLI(t)

	resp, err := c.runJSON(nil, "menu", "add", "--name", "Tea", "--category", "Beverages", "--price", "10")
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotLoggedIn, resp.Error.Code)

	c.mustRun("login", "student", "asha@college.edu")
	resp, err = c.runJSON(nil, "menu", "add", "--name", "Tea", "--category", "Beverages", "--price", "10")
	require.Error(t, err)
	assert.Equal(t, ErrCodeForbidden, resp.Error.Code)
}

func TestMenuImportAndList(t *testing.T) {
	c := newTestCLI(t)
	c.seedMenu()

	var items []model.MenuItem
	_, err := c.runJSON(&items, "menu", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"thali", "samosa"}, menuIDs(items), "students do not see unavailable items")

	_, err = c.runJSON(&items, "menu", "list", "--all")
	require.NoError(t, err)
	assert.Equal(t, []string{"thali", "samosa", "lassi"}, menuIDs(items))

	_, err = c.runJSON(&items, "menu", "list", "--all", "--veg")
	require.NoError(t, err)
	assert.Equal(t, []string{"samosa", "lassi"}, menuIDs(items))

	_, err = c.runJSON(&items, "menu", "list", "--all", "--sort", "high")
	require.NoError(t, err)
	assert.Equal(t, []string{"lassi", "thali", "samosa"}, menuIDs(items))

	_, err = c.runJSON(&items, "menu", "list", "-q", "SAM")
	require.NoError(t, err)
	assert.Equal(t, []string{"samosa"}, menuIDs(items))

	resp, err := c.runJSON(nil, "menu", "list", "--sort", "sideways")
	require.Error(t, err)
	assert.Equal(t, ErrCodeBadArgs, resp.Error.Code)

	out := c.mustRun("menu", "list")
	assert.Contains(t, out, "Samosa")
	assert.Contains(t, out, "[Popular]")
	assert.Contains(t, out, "₹5.00 (was ₹8.00)")
}

func TestMenuImportReimportUpdates(t *testing.T) {
	c := newTestCLI(t)
	c.seedMenu()
	c.mustRun("login", "admin", "kitchen@college.edu")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu.cue"), []byte(testMenuCUE), 0644))

	var res importResult
	_, err := c.runJSON(&res, "menu", "import", dir)
	require.NoError(t, err)
	assert.Equal(t, importResult{Added: 0, Updated: 3}, res)

	resp, err := c.runJSON(nil, "menu", "import", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeMenuLoad, resp.Error.Code)
}

func TestCartCommands(t *testing.T) {
	c := newTestCLI(t)
	c.seedMenu()

	c.mustRun("cart", "add", "thali")
	c.mustRun("cart", "inc", "thali")

	var cart cartView
	_, err := c.runJSON(&cart, "cart", "add", "samosa")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 3, cart.Items)
	assert.Equal(t, "25", cart.Total.String())
	assert.Equal(t, "3", cart.Savings.String())

	resp, err := c.runJSON(nil, "cart", "add", "lassi")
	require.Error(t, err)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)

	resp, err = c.runJSON(nil, "cart", "add", "dosa")
	require.Error(t, err)
	assert.Equal(t, ErrCodeItemNotFound, resp.Error.Code)

	_, err = c.runJSON(&cart, "cart", "dec", "thali")
	require.NoError(t, err)
	assert.Equal(t, "15", cart.Total.String())

	_, err = c.runJSON(&cart, "cart", "remove", "samosa")
	require.NoError(t, err)
	assert.Equal(t, "10", cart.Total.String())

	out := c.mustRun("cart", "show")
	assert.Contains(t, out, "Thali")
	assert.Contains(t, out, "Total: ₹10.00")

	assert.Contains(t, c.mustRun("cart", "clear"), "Cart is empty.")
}

func TestCartRequiresStudent(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("login", "admin", "kitchen@college.edu")

	resp, err := c.runJSON(nil, "cart", "show")
	require.Error(t, err)
	assert.Equal(t, ErrCodeForbidden, resp.Error.Code)
}

func TestOrderLifecycleCommands(t *testing.T) {
	c := newTestCLI(t)
	c.seedMenu()

	resp, err := c.runJSON(nil, "order", "checkout")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeEmptyCart, resp.Error.Code)

	c.mustRun("cart", "add", "thali")
	c.mustRun("cart", "add", "thali")
	c.mustRun("cart", "add", "samosa")

	var order model.Order
	_, err = c.runJSON(&order, "order", "checkout")
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	assert.Equal(t, "asha@college.edu", order.Email)
	assert.Equal(t, model.StatusReceived, order.Status)
	assert.Equal(t, "25", order.Total.String())
	assert.Equal(t, 3, order.ItemCount())

	var cart cartView
	_, err = c.runJSON(&cart, "cart", "show")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	var current model.Order
	_, err = c.runJSON(&current, "order", "current")
	require.NoError(t, err)
	assert.Equal(t, order.ID, current.ID)

	// Students cannot move orders.
	resp, err = c.runJSON(nil, "order", "status", order.ID, "Preparing")
	require.Error(t, err)
	assert.Equal(t, ErrCodeForbidden, resp.Error.Code)

	c.mustRun("login", "admin", "kitchen@college.edu")

	_, err = c.runJSON(&order, "order", "status", order.ID, "preparing")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, order.Status)

	resp, err = c.runJSON(nil, "order", "status", order.ID, "Received")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidTransition, resp.Error.Code)

	resp, err = c.runJSON(nil, "order", "status", order.ID, "Cooking")
	require.Error(t, err)
	assert.Equal(t, ErrCodeBadArgs, resp.Error.Code)

	_, err = c.runJSON(&order, "order", "status", order.ID, "Finished")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, order.Status)

	var active, history []model.Order
	_, err = c.runJSON(&active, "order", "active")
	require.NoError(t, err)
	_, err = c.runJSON(&history, "order", "history")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Len(t, history, 1)
	assert.Equal(t, model.StatusFinished, active[0].Status)
	assert.Equal(t, order.ID, history[0].ID)

	resp, err = c.runJSON(nil, "order", "finish", order.ID)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidTransition, resp.Error.Code)

	c.mustRun("order", "delete", order.ID)
	_, err = c.runJSON(&active, "order", "active")
	require.NoError(t, err)
	assert.Empty(t, active)

	resp, err = c.runJSON(nil, "order", "delete", order.ID)
	require.Error(t, err)
	assert.Equal(t, ErrCodeOrderNotFound, resp.Error.Code)

	// Reorder from history, then forget it.
	c.mustRun("login", "student", "asha@college.edu")
	_, err = c.runJSON(&cart, "order", "again", order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items)
	assert.Equal(t, "25", cart.Total.String())

	c.mustRun("order", "forget", order.ID)
	_, err = c.runJSON(&history, "order", "history")
	require.NoError(t, err)
	assert.Empty(t, history)

	resp, err = c.runJSON(nil, "order", "again", order.ID)
	require.Error(t, err)
	assert.Equal(t, ErrCodeOrderNotFound, resp.Error.Code)
}

func TestOrderCurrentWithoutOrders(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("login", "student", "asha@college.edu")

	assert.Contains(t, c.mustRun("order", "current"), "No active order.")
	assert.Contains(t, c.mustRun("order", "active"), "No orders.")
}

func TestFavCommands(t *testing.T) {
	c := newTestCLI(t)
	c.seedMenu()

	var toggled map[string]any
	_, err := c.runJSON(&toggled, "fav", "toggle", "samosa")
	require.NoError(t, err)
	assert.Equal(t, true, toggled["favorite"])

	c.mustRun("fav", "toggle", "thali")

	var favs []favoriteView
	_, err = c.runJSON(&favs, "fav", "list")
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "samosa", favs[0].ID)
	assert.Equal(t, "thali", favs[1].ID)
	require.NotNil(t, favs[0].Item)
	assert.Equal(t, "Samosa", favs[0].Item.Name)

	_, err = c.runJSON(&toggled, "fav", "toggle", "samosa")
	require.NoError(t, err)
	assert.Equal(t, false, toggled["favorite"])

	resp, err := c.runJSON(nil, "fav", "toggle", "dosa")
	require.Error(t, err)
	assert.Equal(t, ErrCodeItemNotFound, resp.Error.Code)

	assert.Contains(t, c.mustRun("menu", "list"), "♥")
}

func TestJournalCommand(t *testing.T) {
	c := newTestCLI(t)
	c.seedMenu()
	c.mustRun("cart", "add", "thali")
	c.mustRun("order", "checkout")

	var all JournalResult
	_, err := c.runJSON(&all, "journal")
	require.NoError(t, err)
	labels := make([]string, len(all.Entries))
	for i, e := range all.Entries {
		labels[i] = e.Label
	}
	assert.Equal(t, []string{"login", "menu import", "login", "cart add", "checkout"}, labels)
	assert.Equal(t, all.Entries[len(all.Entries)-1].Seq, all.LastSeq)

	var checkout JournalResult
	_, err = c.runJSON(&checkout, "journal", "--label", "checkout")
	require.NoError(t, err)
	require.Len(t, checkout.Entries, 1)
	assert.ElementsMatch(t, []string{model.KeyActiveOrders, model.KeyCart}, checkout.Entries[0].Keys)

	var tail JournalResult
	_, err = c.runJSON(&tail, "journal", "--after", "1", "--limit", "2")
	require.NoError(t, err)
	require.Len(t, tail.Entries, 2)
	assert.Equal(t, "menu import", tail.Entries[0].Label)
}

func TestConfigFileAndInvalidConfig(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("currency: \"Rs \"\nguest_email: walkin@canteen.local\n"), 0644))
	c.mustRun("--config", good, "login", "student", "asha@college.edu")
	assert.Contains(t, c.mustRun("--config", good, "cart", "show"), "Cart is empty.")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log_level: loud\n"), 0644))
	resp, err := c.runJSON(nil, "--config", bad, "whoami")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func menuIDs(items []model.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
