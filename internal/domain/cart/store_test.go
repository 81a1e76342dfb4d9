package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	st := NewMemoryStorage()
	return NewStore(st), st
}

func mustItems(t *testing.T, s *Store) []Item {
	t.Helper()
	items, err := s.Items(context.Background())
	require.NoError(t, err)
	return items
}

func TestStore_AddMergesIdenticalLines(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item := Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 2}
	require.NoError(t, s.Add(ctx, item))
	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 3}))

	items := mustItems(t, s)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestStore_DistinctSelectionsStayDistinct(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 1,
		Customizations: sizeSelection("500g", "0")}))
	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 1,
		Customizations: sizeSelection("1kg", "40")}))

	assert.Len(t, mustItems(t, s), 2)
}

func TestStore_AddRejectsNonPositiveQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Error(t, s.Add(context.Background(), Item{ProductID: "p1", Quantity: 0}))
}

func TestStore_UpdateQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 2}))
	require.NoError(t, s.UpdateQuantity(ctx, "p1", 7))

	items := mustItems(t, s)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestStore_UpdateQuantityToZeroRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		s, _ := newTestStore(t)
		ctx := context.Background()

		require.NoError(t, s.Add(ctx, Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 2}))
		require.NoError(t, s.UpdateQuantity(ctx, "p1", q))
		assert.Empty(t, mustItems(t, s), "quantity %d", q)
	}
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 1}))
	require.NoError(t, s.Remove(ctx, "nope"))
	assert.Len(t, mustItems(t, s), 1)
}

func TestStore_Clear(t *testing.T) {
	s, st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", BasePrice: dec("100"), Quantity: 1}))
	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, mustItems(t, s))
	data, err := st.Get(ctx, cartKey)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_SurvivesReload(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, NewStore(st).Add(ctx, Item{ProductID: "p1", BasePrice: dec("99.50"), Quantity: 2}))

	// A fresh store over the same scope sees the persisted cart.
	items := mustItems(t, NewStore(st))
	require.Len(t, items, 1)
	assert.True(t, dec("99.50").Equal(items[0].BasePrice))
}

func TestStore_CorruptPayloadFailsOpen(t *testing.T) {
	s, st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, cartKey, []byte(`{"not":"an array`)))

	items, err := s.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// The corrupt payload is dropped, not retried on every read.
	data, err := st.Get(ctx, cartKey)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestTotals(t *testing.T) {
	items := []Item{
		{ProductID: "p1", BasePrice: dec("100"), Quantity: 2,
			Customizations: sizeSelection("1kg", "40")},
		{ProductID: "p2", BasePrice: dec("50.25"), Quantity: 3},
	}

	assert.Equal(t, 5, TotalItems(items))
	// (100+40)*2 + 50.25*3
	assert.True(t, dec("430.75").Equal(TotalPrice(items)), "got %s", TotalPrice(items))
}

func TestTotals_Empty(t *testing.T) {
	assert.Zero(t, TotalItems(nil))
	assert.True(t, TotalPrice(nil).IsZero())
}
