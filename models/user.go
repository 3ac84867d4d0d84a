package models

import "time"

// Roles a user can hold. Sellers are farmers, suppliers and processors.
const (
	RoleConsumer  = "consumer"
	RoleFarmer    = "farmer"
	RoleSupplier  = "supplier"
	RoleProcessor = "processor"
	RoleAdmin     = "admin"
)

// IsSellerRole reports whether the role may list products.
func IsSellerRole(role string) bool {
	switch role {
	case RoleFarmer, RoleSupplier, RoleProcessor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id" bson:"id"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone" bson:"phone"`
	Password     string    `json:"-" bson:"password"`
	Name         string    `json:"name" bson:"name"`
	Role         string    `json:"role" bson:"role"`
	FarmInfo     string    `json:"farmInfo,omitempty" bson:"farmInfo,omitempty"`
	BioStatus    string    `json:"bioStatus,omitempty" bson:"bioStatus,omitempty"`
	Certificates []string  `json:"certificates" bson:"certificates"`
	Addresses    []string  `json:"addresses" bson:"addresses"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	Active       bool      `json:"active" bson:"active"`

	RefreshToken  string    `json:"-" bson:"refreshToken,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refreshExpiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"lastLogin,omitempty"`
}
