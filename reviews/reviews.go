package reviews

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"panierbio/db"
	"panierbio/models"
	"panierbio/mq"
	"panierbio/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handler serves review creation and listing, and owns the product-rating
// aggregate.
type Handler struct {
	db  *db.DB
	bus *mq.Bus

	// serializes the read-all-then-write rating recompute per product
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// lockEntry is refcounted so idle products never accumulate in the map.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewHandler(database *db.DB, bus *mq.Bus) *Handler {
	return &Handler{db: database, bus: bus, locks: make(map[string]*lockEntry)}
}

func (h *Handler) lockProduct(productID string) *lockEntry {
	h.mu.Lock()
	entry, ok := h.locks[productID]
	if !ok {
		entry = &lockEntry{}
		h.locks[productID] = entry
	}
	entry.refs++
	h.mu.Unlock()

	entry.mu.Lock()
	return entry
}

func (h *Handler) unlockProduct(productID string, entry *lockEntry) {
	entry.mu.Unlock()

	h.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(h.locks, productID)
	}
	h.mu.Unlock()
}

// MeanRating is the arithmetic mean over the full review set; 0 with no
// reviews.
func MeanRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews))
}

type createInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Create stores a review and recomputes the product's rating/reviewCount
// from the full review set, under a per-product lock so concurrent reviews
// cannot overwrite each other's aggregate. One review per user per product.
// POST /api/reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input createInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if input.ProductID == "" || input.Rating < 1 || input.Rating > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "La note doit être comprise entre 1 et 5")
		return
	}

	userID := utils.GetUserIDFromRequest(r)

	err := h.db.Products.FindOne(ctx, bson.M{"id": input.ProductID, "active": true}).Err()
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Produit introuvable")
		return
	}

	count, err := h.db.Reviews.CountDocuments(ctx, bson.M{
		"productId": input.ProductID,
		"userId":    userID,
	})
	if err != nil {
		log.Printf("reviews: duplicate check error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la création de l'avis")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Vous avez déjà donné votre avis sur ce produit")
		return
	}

	review := models.Review{
		ID:        utils.NewID(),
		ProductID: input.ProductID,
		UserID:    userID,
		UserName:  utils.GetUserNameFromRequest(r),
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	}

	lock := h.lockProduct(input.ProductID)
	defer h.unlockProduct(input.ProductID, lock)

	if _, err := h.db.Reviews.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Vous avez déjà donné votre avis sur ce produit")
			return
		}
		log.Printf("reviews: insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la création de l'avis")
		return
	}

	if err := h.recomputeRating(ctx, input.ProductID); err != nil {
		// Review persisted; the aggregate heals on the next write.
		log.Printf("reviews: rating recompute failed for %s: %v", input.ProductID, err)
	}

	go h.bus.Emit(context.Background(), models.Event{
		EntityType: "review", EntityID: review.ID, Method: "POST",
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"review": review})
}

// recomputeRating re-reads the product's full review set and writes the
// aggregate back. Callers hold the product lock.
func (h *Handler) recomputeRating(ctx context.Context, productID string) error {
	cursor, err := h.db.Reviews.Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var all []models.Review
	if err := cursor.All(ctx, &all); err != nil {
		return err
	}

	_, err = h.db.Products.UpdateOne(ctx,
		bson.M{"id": productID},
		bson.M{"$set": bson.M{"rating": MeanRating(all), "reviewCount": len(all)}},
	)
	return err
}

// List returns a product's reviews, newest first.
// GET /api/reviews/:productId
func (h *Handler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"productId": ps.ByName("productId")}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.db.Reviews.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("reviews: list error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des avis")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Review
	if err := cursor.All(ctx, &list); err != nil {
		log.Printf("reviews: decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des avis")
		return
	}
	if list == nil {
		list = []models.Review{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reviews": list})
}
