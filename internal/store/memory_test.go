package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielavelez12/goupromo/internal/cart"
)

func TestMemoryStoreIsolatesSlots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, "a", []cart.LineItem{{ItemID: "x", Quantity: 1}}))
	require.NoError(t, s.Save(ctx, "b", []cart.LineItem{{ItemID: "y", Quantity: 2}}))

	gotA, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, gotA, 1)
	require.Equal(t, "x", gotA[0].ItemID)

	require.NoError(t, s.Clear(ctx, "a"))
	gotA, err = s.Load(ctx, "a")
	require.NoError(t, err)
	require.Empty(t, gotA)

	gotB, err := s.Load(ctx, "b")
	require.NoError(t, err)
	require.Len(t, gotB, 1)
}

func TestMemoryStoreCopiesOnSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	items := []cart.LineItem{{ItemID: "x", Quantity: 1}}
	require.NoError(t, s.Save(ctx, "a", items))
	items[0].Quantity = 99

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 1, got[0].Quantity)

	got[0].Quantity = 42
	again, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 1, again[0].Quantity)
}
