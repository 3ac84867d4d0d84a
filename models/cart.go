package models

import "time"

// CartItem is one line of a user's server-side cart.
type CartItem struct {
	UserID    string    `json:"userId" bson:"userId"`
	ProductID string    `json:"productId" bson:"productId"`
	Name      string    `json:"name" bson:"name"`
	Unit      string    `json:"unit" bson:"unit"`
	Price     float64   `json:"price" bson:"price"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	SellerID  string    `json:"sellerId" bson:"sellerId"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}
