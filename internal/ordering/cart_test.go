package ordering

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

func TestLoadCart_AbsentKeyIsEmpty(t *testing.T) {
	st := newTestStore(t)
	c := newTestCart(t, st)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Total().IsZero())
}

func TestLoadCart_DropsNonPositiveQuantities(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Put(ctx, model.KeyCart, []model.CartLine{
		{Item: item("a", "10"), Quantity: 2},
		{Item: item("b", "5"), Quantity: 0},
		{Item: item("c", "5"), Quantity: -1},
	}))

	c := newTestCart(t, st)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].Item.ID)
}

func TestCart_AddNewAndExisting(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	require.NoError(t, c.Add(ctx, item("a", "10")))
	require.NoError(t, c.Add(ctx, item("b", "5")))
	require.NoError(t, c.Add(ctx, item("a", "10")))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].Item.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "b", lines[1].Item.ID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 3, c.ItemCount())
}

func TestCart_AddKeepsOriginalSnapshot(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	require.NoError(t, c.Add(ctx, item("a", "10")))
	require.NoError(t, c.Add(ctx, item("a", "99")))

	assert.Equal(t, "20", c.Total().String())
}

func TestCart_IncreaseIsAdd(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	require.NoError(t, c.Increase(ctx, item("a", "10")))
	require.NoError(t, c.Increase(ctx, item("a", "10")))

	assert.Equal(t, 2, c.Quantity("a"))
}

func TestCart_DecreaseRemovesAtOne(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	require.NoError(t, c.Add(ctx, item("a", "10")))
	require.NoError(t, c.Add(ctx, item("a", "10")))

	require.NoError(t, c.Decrease(ctx, "a"))
	assert.Equal(t, 1, c.Quantity("a"))

	require.NoError(t, c.Decrease(ctx, "a"))
	assert.Equal(t, 0, c.Quantity("a"))
	assert.True(t, c.IsEmpty())
	assert.Empty(t, persistedCart(t, st))
}

func TestCart_RandomAddDecreaseKeepsQuantitiesPositive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c"}
	want := map[string]int{}

	for step := 0; step < 400; step++ {
		id := ids[rng.Intn(len(ids))]
		if rng.Intn(2) == 0 {
			require.NoError(t, c.Add(ctx, item(id, "10")))
			want[id]++
		} else {
			require.NoError(t, c.Decrease(ctx, id))
			if want[id] > 0 {
				want[id]--
			}
		}

		persisted := persistedCart(t, st)
		seen := map[string]int{}
		for _, l := range persisted {
			require.Positive(t, l.Quantity, "step %d: line %s", step, l.Item.ID)
			seen[l.Item.ID] = l.Quantity
		}
		for _, id := range ids {
			require.Equal(t, want[id], seen[id], "step %d: persisted quantity of %s", step, id)
			require.Equal(t, want[id], c.Quantity(id), "step %d: in-memory quantity of %s", step, id)
		}
		require.Len(t, c.Lines(), len(persisted), "step %d", step)
	}
}

func TestCart_DecreaseAndRemoveMissingAreNoops(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)
	require.NoError(t, c.Add(ctx, item("a", "10")))
	before := st.applies

	require.NoError(t, c.Decrease(ctx, "missing"))
	require.NoError(t, c.Remove(ctx, "missing"))

	assert.Equal(t, before, st.applies, "no-op must not write")
	assert.Equal(t, 1, c.Quantity("a"))
}

func TestCart_RemoveDropsWholeLine(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Add(ctx, item("a", "10")))
	}
	require.NoError(t, c.Add(ctx, item("b", "5")))

	require.NoError(t, c.Remove(ctx, "a"))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].Item.ID)
}

func TestCart_Clear(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)
	require.NoError(t, c.Add(ctx, item("a", "10")))

	require.NoError(t, c.Clear(ctx))

	assert.True(t, c.IsEmpty())
	lines := persistedCart(t, st)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestCart_TotalsUseEffectivePrice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	// A: price 10, no discount, qty 2. B: price 8 discounted to 5, qty 1.
	require.NoError(t, c.Add(ctx, item("A", "10")))
	require.NoError(t, c.Add(ctx, item("A", "10")))
	require.NoError(t, c.Add(ctx, discounted("B", "8", "5")))

	assert.Equal(t, "25", c.Total().String())
	assert.Equal(t, "3", c.Savings().String())
}

func TestCart_DecimalPricesStayExact(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Add(ctx, item("tea", "0.1")))
	}

	assert.Equal(t, "0.3", c.Total().String())
}

func TestCart_StatePersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)
	require.NoError(t, c.Add(ctx, discounted("B", "8", "5")))
	require.NoError(t, c.Add(ctx, item("A", "10")))
	require.NoError(t, c.Add(ctx, item("A", "10")))

	reloaded := newTestCart(t, st)

	assert.Equal(t, c.Lines(), reloaded.Lines())
	assert.Equal(t, c.Total().String(), reloaded.Total().String())
}

func TestCart_FailedWriteLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)
	require.NoError(t, c.Add(ctx, item("a", "10")))

	st.failWrites = true
	err := c.Add(ctx, item("a", "10"))
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err))
	assert.ErrorIs(t, err, errInjected)

	require.Error(t, c.Remove(ctx, "a"))
	require.Error(t, c.Clear(ctx))

	assert.Equal(t, 1, c.Quantity("a"))
	st.failWrites = false
	assert.Len(t, persistedCart(t, st), 1)
}

func TestCart_LinesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)
	require.NoError(t, c.Add(ctx, item("a", "10")))

	lines := c.Lines()
	lines[0].Quantity = 50

	assert.Equal(t, 1, c.Quantity("a"))
}

func TestCart_EveryMutationIsJournaled(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := newTestCart(t, st)

	require.NoError(t, c.Add(ctx, item("a", "10")))
	require.NoError(t, c.Decrease(ctx, "a"))
	require.NoError(t, c.Clear(ctx))

	entries, err := st.Journal(ctx, store.JournalQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "cart add", entries[0].Label)
	assert.Equal(t, "cart decrease", entries[1].Label)
	assert.Equal(t, "cart clear", entries[2].Label)
	assert.Equal(t, []string{model.KeyCart}, entries[0].Keys)
}
