package orders

import (
	"math"

	"panierbio/models"
)

// Subtotal sums price×quantity over the line-item snapshots.
func Subtotal(items []models.OrderItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// SellerIDs returns the distinct sellers appearing in the items, in first
// appearance order.
func SellerIDs(items []models.OrderItem) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, item := range items {
		if item.SellerID == "" || seen[item.SellerID] {
			continue
		}
		seen[item.SellerID] = true
		ids = append(ids, item.SellerID)
	}
	return ids
}

// TotalsMatch compares money amounts with a one-centime tolerance so float
// rounding never rejects an honest order.
func TotalsMatch(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func validDeliveryMethod(m string) bool {
	return m == models.DeliveryHome || m == models.DeliveryPickup
}

func validPaymentMethod(m string) bool {
	return m == models.PayWave || m == models.PayOrangeMoney || m == models.PayFreeMoney
}
