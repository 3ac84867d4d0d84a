package models

import "time"

// Bio certification states.
const (
	BioCertified  = "certified"
	BioTransition = "transition"
	BioVerified   = "verified"
)

type Product struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	BioStatus   string    `json:"bioStatus" bson:"bioStatus"`
	SellerID    string    `json:"sellerId" bson:"sellerId"`
	SellerName  string    `json:"sellerName" bson:"sellerName"`
	Location    string    `json:"location" bson:"location"`
	Unit        string    `json:"unit" bson:"unit"`
	Stock       int       `json:"stock" bson:"stock"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Rating      float64   `json:"rating" bson:"rating"`
	ReviewCount int       `json:"reviewCount" bson:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	Active      bool      `json:"active" bson:"active"`
}

// ProductUpdate is the partial-update shape for PUT /api/products/:productId.
// A nil field is left untouched; a set field is written as-is.
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	BioStatus   *string  `json:"bioStatus,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}
