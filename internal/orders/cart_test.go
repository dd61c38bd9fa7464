package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItemMergesLines(t *testing.T) {
	var cart Cart
	cart.AddItem("p1", "sup-1", 2)
	cart.AddItem("p1", "sup-1", 3)
	cart.AddItem("p1", "sup-2", 1) // same product, different supplier: separate line

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 5.0, cart.Items[0].Quantity)
	assert.Equal(t, "sup-2", cart.Items[1].SupplierID)
	assert.Equal(t, 1.0, cart.Items[1].Quantity)
}

func TestCartUpdateQuantity(t *testing.T) {
	var cart Cart
	cart.AddItem("p1", "sup-1", 2)
	cart.AddItem("p2", "sup-1", 4)

	cart.UpdateQuantity("p1", "sup-1", 7)
	assert.Equal(t, 7.0, cart.Items[0].Quantity)

	cart.UpdateQuantity("p2", "sup-1", 0)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ProductID)

	// Unknown line is a no-op.
	cart.UpdateQuantity("ghost", "sup-1", 3)
	assert.Len(t, cart.Items, 1)
}

func TestGroupBySupplier(t *testing.T) {
	svc, _ := newTestService(t)

	groups, err := svc.GroupBySupplier([]CartItem{
		{ProductID: "p1", SupplierID: "sup-1", Quantity: 3},
		{ProductID: "p3", SupplierID: "sup-2", Quantity: 10},
		{ProductID: "p2", SupplierID: "sup-1", Quantity: 4},
	})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	metro := groups[0]
	assert.Equal(t, "Metro", metro.SupplierName)
	require.Len(t, metro.Lines, 2)
	assert.Equal(t, "Tomates", metro.Lines[0].ProductName)
	assert.Equal(t, "MT-TOM", metro.Lines[0].SupplierSku)
	assert.Equal(t, 75.0, metro.Lines[0].Total)
	assert.Equal(t, 3*25.0+4*10.0, metro.Total)
	assert.False(t, metro.BelowMinOrder) // 115 >= minOrder 100

	pomona := groups[1]
	assert.Equal(t, "Pomona", pomona.SupplierName)
	assert.Equal(t, 80.0, pomona.Total)
	assert.False(t, pomona.BelowMinOrder)
}

func TestGroupBySupplierFlagsMinOrderShortfall(t *testing.T) {
	svc, _ := newTestService(t)

	groups, err := svc.GroupBySupplier([]CartItem{
		{ProductID: "p1", SupplierID: "sup-1", Quantity: 1}, // 25 < minOrder 100
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].BelowMinOrder)
	assert.Equal(t, 100.0, groups[0].MinOrder)
}

func TestGroupBySupplierSkipsUnresolvable(t *testing.T) {
	svc, _ := newTestService(t)

	groups, err := svc.GroupBySupplier([]CartItem{
		{ProductID: "p1", SupplierID: "no-such-supplier", Quantity: 2},
		{ProductID: "ghost", SupplierID: "sup-1", Quantity: 2},
		{ProductID: "p3", SupplierID: "sup-1", Quantity: 2}, // no mapping at sup-1
		{ProductID: "p2", SupplierID: "sup-1", Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Lines, 1)
	assert.Equal(t, "p2", groups[0].Lines[0].ProductID)
}
