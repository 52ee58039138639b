package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/GlaceYT/E-Canteen/internal/app"
	"github.com/GlaceYT/E-Canteen/internal/model"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %v -> %s", event.Seq, event.Op, event.Args, event.Outcome)
		if event.Error != "" {
			fmt.Fprintf(&buf, " (%s)", event.Error)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// AssertionContext gives state assertions access to the scenario's app.
type AssertionContext struct {
	App   *app.App
	Ctx   context.Context
	Names map[string]string
}

func (c *AssertionContext) resolve(v string) string {
	return resolve(c.Names, v)
}

// assertTraceContains checks that the op ran successfully at least once.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Op == assertion.Op && event.Outcome == OutcomeOK {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("successful %s", assertion.Op),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that ops first appear in the specified order.
// Intervening steps are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for _, event := range trace {
		for _, op := range assertion.Ops {
			if event.Op == op && positions[op] == 0 {
				positions[op] = event.Seq
			}
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev, curr := assertion.Ops[i-1], assertion.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that the op ran exactly Count times, whatever
// the outcome.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == assertion.Op {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s appears %d times", assertion.Op, assertion.Count),
			Actual:   fmt.Sprintf("appears %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertState checks an assertion against the final app state.
func assertState(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	a := actx.App
	fail := func(expected, actual string) error {
		return &AssertionError{Type: assertion.Type, Expected: expected, Actual: actual, Trace: trace}
	}

	switch assertion.Type {
	case AssertCartTotal, AssertCartSavings:
		want, err := model.ParsePrice(assertion.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", assertion.Type, err)
		}
		got := a.Cart.Total()
		if assertion.Type == AssertCartSavings {
			got = a.Cart.Savings()
		}
		if !got.Equal(want) {
			return fail(want.String(), got.String())
		}

	case AssertCartQuantity:
		id := actx.resolve(assertion.Item)
		if got := a.Cart.Quantity(id); got != assertion.Count {
			return fail(fmt.Sprintf("%s quantity %d", id, assertion.Count), fmt.Sprintf("quantity %d", got))
		}

	case AssertCartLines:
		if got := len(a.Cart.Lines()); got != assertion.Count {
			return fail(fmt.Sprintf("%d cart lines", assertion.Count), fmt.Sprintf("%d cart lines", got))
		}

	case AssertActiveCount, AssertHistoryCount:
		orders, err := a.Orders.Active(actx.Ctx)
		if assertion.Type == AssertHistoryCount {
			orders, err = a.Orders.History(actx.Ctx)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", assertion.Type, err)
		}
		if len(orders) != assertion.Count {
			return fail(fmt.Sprintf("%d orders", assertion.Count), fmt.Sprintf("%d orders", len(orders)))
		}

	case AssertOrderStatus:
		id := actx.resolve(assertion.Order)
		get := a.Orders.Get
		if assertion.In == "history" {
			get = a.Orders.FindHistory
		}
		order, err := get(actx.Ctx, id)
		if err != nil {
			return fail(fmt.Sprintf("order %s is %s", id, assertion.Status), err.Error())
		}
		want, err := model.ParseStatus(assertion.Status)
		if err != nil {
			return fmt.Errorf("%s: %w", assertion.Type, err)
		}
		if order.Status != want {
			return fail(fmt.Sprintf("order %s is %s", id, want), string(order.Status))
		}

	case AssertFavorite:
		id := actx.resolve(assertion.Item)
		if got := a.Favorites.Contains(id); got != assertion.Expect {
			return fail(fmt.Sprintf("favorite(%s) = %t", id, assertion.Expect), fmt.Sprintf("%t", got))
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides app access for state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertCartTotal, AssertCartSavings, AssertCartQuantity, AssertCartLines,
			AssertActiveCount, AssertHistoryCount, AssertOrderStatus, AssertFavorite:
			if actx == nil || actx.App == nil {
				err = fmt.Errorf("assertion[%d]: %s requires app context", i, assertion.Type)
			} else {
				err = assertState(actx, result.Trace, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
