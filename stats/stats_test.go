package stats

import (
	"testing"

	"panierbio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedCartOrders() []models.Order {
	return []models.Order{
		{
			ID: "o1",
			Items: []models.OrderItem{
				{ProductID: "p1", SellerID: "s1", Price: 1000, Quantity: 2},
				{ProductID: "p2", SellerID: "s2", Price: 500, Quantity: 1},
			},
		},
		{
			ID: "o2",
			Items: []models.OrderItem{
				{ProductID: "p3", SellerID: "s2", Price: 2000, Quantity: 3},
			},
		},
		{
			ID: "o3",
			Items: []models.OrderItem{
				{ProductID: "p1", SellerID: "s1", Price: 1000, Quantity: 1},
			},
		},
	}
}

func TestSellerOrdersKeepsMixedCarts(t *testing.T) {
	orders := mixedCartOrders()

	s1 := SellerOrders(orders, "s1")
	require.Len(t, s1, 2)
	assert.Equal(t, "o1", s1[0].ID)
	assert.Equal(t, "o3", s1[1].ID)

	s2 := SellerOrders(orders, "s2")
	require.Len(t, s2, 2)
	assert.Equal(t, "o1", s2[0].ID)
	assert.Equal(t, "o2", s2[1].ID)

	assert.Empty(t, SellerOrders(orders, "s3"))
}

func TestSellerRevenueExcludesOtherSellersItems(t *testing.T) {
	orders := mixedCartOrders()

	// s1: 1000×2 from o1 plus 1000×1 from o3; s2's 500 in o1 never counts.
	assert.Equal(t, float64(3000), SellerRevenue(orders, "s1"))
	// s2: 500×1 from o1 plus 2000×3 from o2.
	assert.Equal(t, float64(6500), SellerRevenue(orders, "s2"))
	assert.Equal(t, float64(0), SellerRevenue(orders, "s3"))
}
