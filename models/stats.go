package models

// SellerStats is the seller dashboard summary.
type SellerStats struct {
	Products      int64   `json:"products"`
	Orders        int     `json:"orders"`
	Revenue       float64 `json:"revenue"`
	PendingOrders int64   `json:"pendingOrders"`
}

// AdminStats is the platform-wide summary.
type AdminStats struct {
	Users    int64   `json:"users"`
	Products int64   `json:"products"`
	Orders   int64   `json:"orders"`
	Revenue  float64 `json:"revenue"`
}

// Event is the payload published on the marketplace event channel.
type Event struct {
	EntityType string   `json:"entity_type"`
	EntityID   string   `json:"entity_id"`
	Method     string   `json:"method"`
	SellerIDs  []string `json:"seller_ids,omitempty"`
	Status     string   `json:"status,omitempty"`
}
