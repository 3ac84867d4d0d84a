package orders

import (
	"testing"

	"panierbio/models"

	"github.com/stretchr/testify/assert"
)

func TestSubtotalSumsLineItems(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", Price: 1000, Quantity: 2},
		{ProductID: "p2", Price: 500, Quantity: 2},
	}
	assert.Equal(t, float64(3000), Subtotal(items))
	assert.Equal(t, float64(0), Subtotal(nil))
}

func TestTotalIsSubtotalPlusDeliveryFee(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", Price: 1500, Quantity: 2},
	}
	subtotal := Subtotal(items)
	fee := 2000.0
	assert.Equal(t, float64(3000), subtotal)
	assert.Equal(t, float64(5000), subtotal+fee)
}

func TestSellerIDsDedupsAndKeepsOrder(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", SellerID: "s2"},
		{ProductID: "p2", SellerID: "s1"},
		{ProductID: "p3", SellerID: "s2"},
		{ProductID: "p4", SellerID: ""},
	}
	assert.Equal(t, []string{"s2", "s1"}, SellerIDs(items))
	assert.Nil(t, SellerIDs(nil))
}

func TestTotalsMatchTolerance(t *testing.T) {
	assert.True(t, TotalsMatch(5000, 5000))
	assert.True(t, TotalsMatch(5000, 5000.005))
	assert.False(t, TotalsMatch(5000, 5000.02))
	assert.False(t, TotalsMatch(5000, 4999))
}

func TestDeliveryAndPaymentMethodValidation(t *testing.T) {
	assert.True(t, validDeliveryMethod(models.DeliveryHome))
	assert.True(t, validDeliveryMethod(models.DeliveryPickup))
	assert.False(t, validDeliveryMethod("drone"))

	assert.True(t, validPaymentMethod(models.PayWave))
	assert.True(t, validPaymentMethod(models.PayOrangeMoney))
	assert.True(t, validPaymentMethod(models.PayFreeMoney))
	assert.False(t, validPaymentMethod("cash"))
}
