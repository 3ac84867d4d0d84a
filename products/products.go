package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"panierbio/db"
	"panierbio/models"
	"panierbio/mq"
	"panierbio/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handler serves the product catalog.
type Handler struct {
	db        *db.DB
	bus       *mq.Bus
	uploadDir string
}

func NewHandler(database *db.DB, bus *mq.Bus, uploadDir string) *Handler {
	return &Handler{db: database, bus: bus, uploadDir: uploadDir}
}

// buildListFilter restricts listings to active products and applies the
// optional exact-match and free-text filters.
func buildListFilter(category, bioStatus, search string) bson.M {
	filter := bson.M{"active": true}
	if category != "" {
		filter["category"] = category
	}
	if bioStatus != "" {
		filter["bioStatus"] = bioStatus
	}
	if search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": regex}},
			{"description": bson.M{"$regex": regex}},
		}
	}
	return filter
}

// List returns active products, newest first.
// GET /api/products?category=&bioStatus=&search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	filter := buildListFilter(q.Get("category"), q.Get("bioStatus"), q.Get("search"))

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.db.Products.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("products: list error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des produits")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Product
	if err := cursor.All(ctx, &list); err != nil {
		log.Printf("products: decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des produits")
		return
	}
	if list == nil {
		list = []models.Product{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"products": list})
}

// ListBySeller returns one seller's active products, newest first.
// GET /api/products/seller/:sellerId
func (h *Handler) ListBySeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"sellerId": ps.ByName("sellerId"), "active": true}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.db.Products.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("products: seller list error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des produits")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Product
	if err := cursor.All(ctx, &list); err != nil {
		log.Printf("products: decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des produits")
		return
	}
	if list == nil {
		list = []models.Product{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"products": list})
}

// Get returns a single product by id.
// GET /api/product/:productId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var product models.Product
	err := h.db.Products.FindOne(ctx, bson.M{"id": ps.ByName("productId")}).Decode(&product)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Produit introuvable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"product": product})
}

// numeric accepts JSON numbers or numeric strings; the web client submits
// form-field values either way.
type numeric string

func (n *numeric) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*n = numeric(s)
	return nil
}

type createInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       numeric `json:"price"`
	Category    string  `json:"category"`
	BioStatus   string  `json:"bioStatus"`
	Location    string  `json:"location"`
	Unit        string  `json:"unit"`
	Stock       numeric `json:"stock"`
	Image       string  `json:"image"`
}

// Create lists a new product for the authenticated seller. The seller
// identity comes from the token, never from the body.
// POST /api/products
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	role := utils.GetRoleFromRequest(r)
	if !models.IsSellerRole(role) {
		utils.RespondWithError(w, http.StatusForbidden, "Seuls les vendeurs peuvent publier des produits")
		return
	}

	var input createInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if input.Name == "" || input.Category == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Champs obligatoires manquants")
		return
	}

	price := utils.ParseFloat(string(input.Price))
	if price < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Prix invalide")
		return
	}

	// Stock falls back to 0 when absent or unparseable.
	stock := utils.ParseInt(string(input.Stock))
	if stock < 0 {
		stock = 0
	}

	unit := input.Unit
	if unit == "" {
		unit = "kg"
	}

	product := models.Product{
		ID:          utils.NewID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       price,
		Category:    input.Category,
		BioStatus:   input.BioStatus,
		SellerID:    utils.GetUserIDFromRequest(r),
		SellerName:  utils.GetUserNameFromRequest(r),
		Location:    input.Location,
		Unit:        unit,
		Stock:       stock,
		Image:       input.Image,
		Rating:      0,
		ReviewCount: 0,
		CreatedAt:   time.Now(),
		Active:      true,
	}

	if _, err := h.db.Products.InsertOne(ctx, product); err != nil {
		log.Printf("products: insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la création du produit")
		return
	}

	go h.bus.Emit(context.Background(), models.Event{
		EntityType: "product", EntityID: product.ID, Method: "POST",
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"product": product})
}

// buildUpdate turns the optional-field struct into a $set document. The
// updatedAt refresh is unconditional.
func buildUpdate(input models.ProductUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Price != nil {
		set["price"] = *input.Price
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.BioStatus != nil {
		set["bioStatus"] = *input.BioStatus
	}
	if input.Location != nil {
		set["location"] = *input.Location
	}
	if input.Stock != nil {
		set["stock"] = *input.Stock
	}
	if input.Unit != nil {
		set["unit"] = *input.Unit
	}
	if input.Image != nil {
		set["image"] = *input.Image
	}
	if input.Active != nil {
		set["active"] = *input.Active
	}
	return set
}

// Update applies a partial update. Only the product's seller or an admin may
// modify it.
// PUT /api/products/:productId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	productID := ps.ByName("productId")

	product, ok := h.authorize(ctx, w, r, productID)
	if !ok {
		return
	}

	var input models.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if input.Price != nil && *input.Price < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Prix invalide")
		return
	}
	if input.Stock != nil && *input.Stock < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Stock invalide")
		return
	}

	set := buildUpdate(input, time.Now())
	if _, err := h.db.Products.UpdateOne(ctx, bson.M{"id": productID}, bson.M{"$set": set}); err != nil {
		log.Printf("products: update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour du produit")
		return
	}

	if err := h.db.Products.FindOne(ctx, bson.M{"id": productID}).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Produit introuvable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"product": product})
}

// Delete soft-deletes: the document stays, listings skip it. Deleting an
// already-inactive product succeeds and changes nothing.
// DELETE /api/products/:productId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	productID := ps.ByName("productId")

	if _, ok := h.authorize(ctx, w, r, productID); !ok {
		return
	}

	_, err := h.db.Products.UpdateOne(ctx,
		bson.M{"id": productID},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("products: delete error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la suppression du produit")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// authorize loads the product and checks the caller owns it (or is admin).
// On failure it writes the response and returns ok=false.
func (h *Handler) authorize(ctx context.Context, w http.ResponseWriter, r *http.Request, productID string) (models.Product, bool) {
	var product models.Product
	err := h.db.Products.FindOne(ctx, bson.M{"id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Produit introuvable")
		return product, false
	}
	if err != nil {
		log.Printf("products: lookup error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération du produit")
		return product, false
	}

	userID := utils.GetUserIDFromRequest(r)
	role := utils.GetRoleFromRequest(r)
	if product.SellerID != userID && role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Vous n'êtes pas le vendeur de ce produit")
		return product, false
	}
	return product, true
}
