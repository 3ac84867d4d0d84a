package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"panierbio/db"
	"panierbio/models"
	"panierbio/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handler serves the server-side cart. The cart is a convenience mirror of
// the client's state; checkout still goes through order creation.
type Handler struct {
	db *db.DB
}

func NewHandler(database *db.DB) *Handler {
	return &Handler{db: database}
}

// Add increments quantity when the product is already in the cart, or
// inserts a new line.
// POST /api/cart
func (h *Handler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}
	item.UserID = utils.GetUserIDFromRequest(r)

	if item.ProductID == "" || item.Quantity <= 0 || item.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Champs obligatoires manquants")
		return
	}

	filter := bson.M{"userId": item.UserID, "productId": item.ProductID}
	update := bson.M{
		"$inc": bson.M{"quantity": item.Quantity},
		"$setOnInsert": bson.M{
			"name":     item.Name,
			"unit":     item.Unit,
			"price":    item.Price,
			"sellerId": item.SellerID,
			"addedAt":  time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := h.db.Carts.UpdateOne(ctx, filter, update, opts); err != nil {
		log.Printf("cart: add error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'ajout au panier")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// List returns the caller's cart lines.
// GET /api/cart
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	cursor, err := h.db.Carts.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		log.Printf("cart: list error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération du panier")
		return
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		log.Printf("cart: decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération du panier")
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": items})
}

// Replace swaps the caller's entire cart for the submitted lines.
// PUT /api/cart
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Items []models.CartItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}

	userID := utils.GetUserIDFromRequest(r)

	if _, err := h.db.Carts.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		log.Printf("cart: clear error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour du panier")
		return
	}

	if len(payload.Items) > 0 {
		now := time.Now()
		docs := make([]interface{}, 0, len(payload.Items))
		for _, item := range payload.Items {
			item.UserID = userID
			item.AddedAt = now
			docs = append(docs, item)
		}
		if _, err := h.db.Carts.InsertMany(ctx, docs); err != nil {
			log.Printf("cart: insert error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour du panier")
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// Remove deletes one line from the cart.
// DELETE /api/cart/:productId
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	_, err := h.db.Carts.DeleteOne(ctx, bson.M{
		"userId":    userID,
		"productId": ps.ByName("productId"),
	})
	if err != nil {
		log.Printf("cart: remove error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la suppression du panier")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
