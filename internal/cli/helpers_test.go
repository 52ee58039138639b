package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GlaceYT/E-Canteen/internal/config"
)

// testMenuCUE declares the menu imported by seedMenu.
const testMenuCUE = `package menu

menu: "thali": {
	name:     "Thali"
	category: "Meals"
	price:    10
}

menu: "samosa": {
	name:            "Samosa"
	category:        "Snacks"
	price:           8
	discountedPrice: 5
	veg:             true
	tag:             "Popular"
}

menu: "lassi": {
	name:      "Lassi"
	category:  "Beverages"
	price:     30
	veg:       true
	available: false
}
`

// testCLI runs canteen commands against one database file.
type testCLI struct {
	t  *testing.T
	db string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvGuestEmail, "")
	return &testCLI{t: t, db: filepath.Join(t.TempDir(), "canteen.db")}
}

// run executes one invocation and returns its stdout.
func (c *testCLI) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", c.db}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

// mustRun executes one invocation that must succeed.
func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "canteen %v: %s", args, out)
	return out
}

// runJSON executes with --format json and decodes the response data into
// dst (when non-nil). The response envelope is returned either way.
func (c *testCLI) runJSON(dst any, args ...string) (CLIResponse, error) {
	c.t.Helper()
	out, runErr := c.run(append([]string{"--format", "json"}, args...)...)

	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(c.t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if dst != nil && len(raw.Data) > 0 {
		require.NoError(c.t, json.Unmarshal(raw.Data, dst))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}, runErr
}

// seedMenu logs in as admin, imports testMenuCUE and logs in as student.
func (c *testCLI) seedMenu() {
	c.t.Helper()
	dir := c.t.TempDir()
	require.NoError(c.t, os.WriteFile(filepath.Join(dir, "menu.cue"), []byte(testMenuCUE), 0644))

	c.mustRun("login", "admin", "kitchen@college.edu")
	c.mustRun("menu", "import", dir)
	c.mustRun("login", "student", "asha@college.edu")
}
