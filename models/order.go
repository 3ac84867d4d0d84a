package models

import "time"

// Delivery and payment options.
const (
	DeliveryHome   = "home"
	DeliveryPickup = "pickup"

	PayWave        = "wave"
	PayOrangeMoney = "orange-money"
	PayFreeMoney   = "free-money"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// OrderItem is a frozen snapshot of a product at purchase time. Later price
// changes on the product never touch past orders.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Unit      string  `json:"unit" bson:"unit"`
	SellerID  string  `json:"sellerId" bson:"sellerId"`
}

type Order struct {
	ID              string      `json:"id" bson:"id"`
	UserID          string      `json:"userId" bson:"userId"`
	UserName        string      `json:"userName" bson:"userName"`
	Items           []OrderItem `json:"items" bson:"items"`
	DeliveryAddress string      `json:"deliveryAddress" bson:"deliveryAddress"`
	DeliveryMethod  string      `json:"deliveryMethod" bson:"deliveryMethod"`
	PaymentMethod   string      `json:"paymentMethod" bson:"paymentMethod"`
	Subtotal        float64     `json:"subtotal" bson:"subtotal"`
	DeliveryFee     float64     `json:"deliveryFee" bson:"deliveryFee"`
	Total           float64     `json:"total" bson:"total"`
	Status          string      `json:"status" bson:"status"`
	PaymentStatus   string      `json:"paymentStatus" bson:"paymentStatus"`
	CreatedAt       time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// OrderStatusUpdate applies status and paymentStatus only when present.
type OrderStatusUpdate struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
}
