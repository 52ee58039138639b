package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted interaction with the canteen.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against a fresh store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step invokes one operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Args are the operation arguments. Item and order arguments accept
	// either a literal id or a name bound by an earlier step's As.
	Args map[string]any `yaml:"args,omitempty"`

	// As binds the id created by this step (menu_add, checkout) to a name.
	As string `yaml:"as,omitempty"`

	// ExpectError is the error kind this step must fail with (see
	// ErrorKind). Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Operations understood by the runner.
const (
	OpLogin         = "login"
	OpLogout        = "logout"
	OpMenuAdd       = "menu_add"
	OpMenuDelete    = "menu_delete"
	OpCartAdd       = "cart_add"
	OpCartDec       = "cart_dec"
	OpCartRemove    = "cart_remove"
	OpCartClear     = "cart_clear"
	OpCheckout      = "checkout"
	OpSetStatus     = "set_status"
	OpFinish        = "finish"
	OpDeleteActive  = "delete_active"
	OpDeleteHistory = "delete_history"
	OpReorder       = "reorder"
	OpFavToggle     = "fav_toggle"
)

var knownOps = map[string]bool{
	OpLogin: true, OpLogout: true, OpMenuAdd: true, OpMenuDelete: true,
	OpCartAdd: true, OpCartDec: true, OpCartRemove: true, OpCartClear: true,
	OpCheckout: true, OpSetStatus: true, OpFinish: true,
	OpDeleteActive: true, OpDeleteHistory: true, OpReorder: true, OpFavToggle: true,
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the operation name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected operation order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Item is a menu item id or bound name (cart_quantity, favorite).
	Item string `yaml:"item,omitempty"`

	// Order is an order id or bound name (order_status).
	Order string `yaml:"order,omitempty"`

	// In selects the collection for order_status: "active" (default) or
	// "history".
	In string `yaml:"in,omitempty"`

	// Status is the expected order status (order_status).
	Status string `yaml:"status,omitempty"`

	// Value is an expected amount such as "25" (cart_total, cart_savings).
	Value string `yaml:"value,omitempty"`

	// Count is the expected count (trace_count, cart_quantity, cart_lines,
	// active_count, history_count).
	Count int `yaml:"count,omitempty"`

	// Expect is the expected membership (favorite).
	Expect bool `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertCartTotal     = "cart_total"
	AssertCartSavings   = "cart_savings"
	AssertCartQuantity  = "cart_quantity"
	AssertCartLines     = "cart_lines"
	AssertActiveCount   = "active_count"
	AssertHistoryCount  = "history_count"
	AssertOrderStatus   = "order_status"
	AssertFavorite      = "favorite"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if !knownOps[step.Op] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.As != "" && step.Op != OpMenuAdd && step.Op != OpCheckout {
			return fmt.Errorf("steps[%d]: as is only allowed on %s and %s", i, OpMenuAdd, OpCheckout)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
	case AssertCartTotal, AssertCartSavings:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertCartQuantity:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for cart_quantity", index)
		}
	case AssertCartLines, AssertActiveCount, AssertHistoryCount:
	case AssertOrderStatus:
		if a.Order == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: order and status are required for order_status", index)
		}
		if a.In != "" && a.In != "active" && a.In != "history" {
			return fmt.Errorf("assertions[%d]: in must be active or history", index)
		}
	case AssertFavorite:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for favorite", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}
	return nil
}
