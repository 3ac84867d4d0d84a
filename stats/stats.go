package stats

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"panierbio/db"
	"panierbio/models"
	"panierbio/mq"
	"panierbio/rdx"
	"panierbio/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handler serves the seller and admin dashboards.
type Handler struct {
	db    *db.DB
	cache *rdx.Client
}

func NewHandler(database *db.DB, cache *rdx.Client) *Handler {
	return &Handler{db: database, cache: cache}
}

// SellerOrders keeps the orders containing at least one of the seller's
// line items.
func SellerOrders(orders []models.Order, sellerID string) []models.Order {
	var matched []models.Order
	for _, order := range orders {
		for _, item := range order.Items {
			if item.SellerID == sellerID {
				matched = append(matched, order)
				break
			}
		}
	}
	return matched
}

// SellerRevenue sums price×quantity over the seller's own line items only;
// other sellers' items in mixed carts never count.
func SellerRevenue(orders []models.Order, sellerID string) float64 {
	var revenue float64
	for _, order := range orders {
		for _, item := range order.Items {
			if item.SellerID == sellerID {
				revenue += item.Price * float64(item.Quantity)
			}
		}
	}
	return revenue
}

// Seller returns the seller dashboard: product count, matching orders,
// revenue, pending counter, and the 5 most recent matching orders.
// GET /api/seller/stats/:sellerId
func (h *Handler) Seller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	sellerID := ps.ByName("sellerId")

	// Sellers may only read their own dashboard
	userID := utils.GetUserIDFromRequest(r)
	if sellerID != userID && utils.GetRoleFromRequest(r) != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Accès refusé à ces statistiques")
		return
	}

	productCount, err := h.db.Products.CountDocuments(ctx, bson.M{"sellerId": sellerID, "active": true})
	if err != nil {
		log.Printf("stats: product count error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}

	// Full scan: line-item seller matching cannot be expressed as a flat
	// filter without unwinding, and the collection stays small.
	cursor, err := h.db.Orders.Find(ctx, bson.M{})
	if err != nil {
		log.Printf("stats: order scan error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		log.Printf("stats: order decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}

	matched := SellerOrders(orders, sellerID)
	revenue := SellerRevenue(matched, sellerID)

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	recent := matched
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if recent == nil {
		recent = []models.Order{}
	}

	pending, err := h.cache.GetInt64(ctx, mq.PendingKey(sellerID))
	if err != nil {
		log.Printf("stats: pending counter read failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"stats": models.SellerStats{
			Products:      productCount,
			Orders:        len(matched),
			Revenue:       revenue,
			PendingOrders: pending,
		},
		"recentOrders": recent,
	})
}

// Admin returns platform-wide counts, completed-payment revenue and the 10
// most recent orders. Admin role only.
// GET /api/admin/stats
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userCount, err := h.db.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Printf("stats: user count error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}

	productCount, err := h.db.Products.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		log.Printf("stats: product count error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}

	orderCount, err := h.db.Orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Printf("stats: order count error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}

	revenue, err := h.completedRevenue(ctx)
	if err != nil {
		log.Printf("stats: revenue aggregation error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(10)
	cursor, err := h.db.Orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Printf("stats: recent orders error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}
	defer cursor.Close(ctx)

	var recent []models.Order
	if err := cursor.All(ctx, &recent); err != nil {
		log.Printf("stats: recent decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des statistiques")
		return
	}
	if recent == nil {
		recent = []models.Order{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"stats": models.AdminStats{
			Users:    userCount,
			Products: productCount,
			Orders:   orderCount,
			Revenue:  revenue,
		},
		"recentOrders": recent,
	})
}

// completedRevenue groups the total of orders whose payment went through.
func (h *Handler) completedRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": models.StatusCompleted}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	}

	cursor, err := h.db.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
