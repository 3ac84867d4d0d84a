package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
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

// Handler serves order creation, listing and status updates.
type Handler struct {
	db      *db.DB
	bus     *mq.Bus
	hub     *Hub
	signKey []byte
}

func NewHandler(database *db.DB, bus *mq.Bus, hub *Hub, signKey []byte) *Handler {
	return &Handler{db: database, bus: bus, hub: hub, signKey: signKey}
}

type createInput struct {
	Items           []itemInput `json:"items"`
	DeliveryAddress string      `json:"deliveryAddress"`
	DeliveryMethod  string      `json:"deliveryMethod"`
	PaymentMethod   string      `json:"paymentMethod"`
	DeliveryFee     float64     `json:"deliveryFee"`
	Total           float64     `json:"total"`
}

type itemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Create places an order. Prices are snapshotted from the catalog, never
// taken from the client; the submitted total must agree with the recomputed
// one. Stock is decremented per line with a guarded $inc, so two concurrent
// orders cannot both consume the last unit.
// POST /api/orders
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var input createInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if len(input.Items) == 0 || input.DeliveryAddress == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Champs obligatoires manquants")
		return
	}
	if !validDeliveryMethod(input.DeliveryMethod) {
		utils.RespondWithError(w, http.StatusBadRequest, "Mode de livraison invalide")
		return
	}
	if !validPaymentMethod(input.PaymentMethod) {
		utils.RespondWithError(w, http.StatusBadRequest, "Moyen de paiement invalide")
		return
	}
	if input.DeliveryFee < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Frais de livraison invalides")
		return
	}

	items, ok := h.snapshotItems(ctx, w, input.Items)
	if !ok {
		return
	}

	subtotal := Subtotal(items)
	total := subtotal + input.DeliveryFee
	if input.Total != 0 && !TotalsMatch(total, input.Total) {
		utils.RespondWithError(w, http.StatusBadRequest, "Le total ne correspond pas au contenu de la commande")
		return
	}

	if !h.reserveStock(ctx, w, items) {
		return
	}

	now := time.Now()
	order := models.Order{
		ID:              utils.NewID(),
		UserID:          utils.GetUserIDFromRequest(r),
		UserName:        utils.GetUserNameFromRequest(r),
		Items:           items,
		DeliveryAddress: input.DeliveryAddress,
		DeliveryMethod:  input.DeliveryMethod,
		PaymentMethod:   input.PaymentMethod,
		Subtotal:        subtotal,
		DeliveryFee:     input.DeliveryFee,
		Total:           total,
		Status:          models.StatusPending,
		PaymentStatus:   models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := h.db.Orders.InsertOne(ctx, order); err != nil {
		log.Printf("orders: insert error: %v", err)
		h.releaseStock(context.Background(), items)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la création de la commande")
		return
	}

	sellers := SellerIDs(order.Items)
	go h.bus.Emit(context.Background(), models.Event{
		EntityType: "order", EntityID: order.ID, Method: "POST", SellerIDs: sellers,
	})
	h.hub.Broadcast(sellers, utils.M{"type": "order-created", "order": order})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"order": order})
}

// snapshotItems freezes catalog name/price/unit/seller into line items.
// Inactive or unknown products abort the order.
func (h *Handler) snapshotItems(ctx context.Context, w http.ResponseWriter, inputs []itemInput) ([]models.OrderItem, bool) {
	items := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Quantité invalide")
			return nil, false
		}

		var product models.Product
		err := h.db.Products.FindOne(ctx, bson.M{"id": in.ProductID, "active": true}).Decode(&product)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Produit indisponible: "+in.ProductID)
			return nil, false
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  in.Quantity,
			Unit:      product.Unit,
			SellerID:  product.SellerID,
		})
	}
	return items, true
}

// reserveStock decrements each line's stock, guarded so it never goes
// negative. On the first failure, already-reserved lines are released on a
// fresh context: the failure may be the request context dying.
func (h *Handler) reserveStock(ctx context.Context, w http.ResponseWriter, items []models.OrderItem) bool {
	for i, item := range items {
		res, err := h.db.Products.UpdateOne(ctx,
			bson.M{"id": item.ProductID, "active": true, "stock": bson.M{"$gte": item.Quantity}},
			bson.M{"$inc": bson.M{"stock": -item.Quantity}},
		)
		if err != nil || res.MatchedCount == 0 {
			if err != nil {
				log.Printf("orders: stock reserve error: %v", err)
			}
			h.releaseStock(context.Background(), items[:i])
			utils.RespondWithError(w, http.StatusBadRequest, "Stock insuffisant pour "+item.Name)
			return false
		}
	}
	return true
}

func (h *Handler) releaseStock(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		_, err := h.db.Products.UpdateOne(ctx,
			bson.M{"id": item.ProductID},
			bson.M{"$inc": bson.M{"stock": item.Quantity}},
		)
		if err != nil {
			log.Printf("orders: stock release error for %s: %v", item.ProductID, err)
		}
	}
}

// List returns orders, optionally one user's, newest first. A non-admin
// caller only ever sees their own orders.
// GET /api/orders?userId=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if userID := r.URL.Query().Get("userId"); userID != "" {
		filter["userId"] = userID
	}
	if utils.GetRoleFromRequest(r) != models.RoleAdmin {
		filter["userId"] = utils.GetUserIDFromRequest(r)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.db.Orders.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("orders: list error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des commandes")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Order
	if err := cursor.All(ctx, &list); err != nil {
		log.Printf("orders: decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération des commandes")
		return
	}
	if list == nil {
		list = []models.Order{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"orders": list})
}

// Get returns one order to its owner, a seller with items in it, or an admin.
// GET /api/orders/:orderId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, ok := h.load(ctx, w, r, ps.ByName("orderId"))
	if !ok {
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"order": order})
}

// buildStatusUpdate turns the optional-field struct into a $set document.
// Omitted fields are left untouched; updatedAt always moves.
func buildStatusUpdate(input models.OrderStatusUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if input.Status != nil {
		set["status"] = *input.Status
	}
	if input.PaymentStatus != nil {
		set["paymentStatus"] = *input.PaymentStatus
	}
	return set
}

// canUpdateStatus decides who may change what: the order's sellers and
// admins change anything; the buyer may only cancel their order and never
// touches paymentStatus.
func canUpdateStatus(order models.Order, input models.OrderStatusUpdate, userID, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, sellerID := range SellerIDs(order.Items) {
		if sellerID == userID {
			return true
		}
	}
	if order.UserID != userID {
		return false
	}
	if input.PaymentStatus != nil {
		return false
	}
	return input.Status != nil && *input.Status == models.StatusCancelled
}

// UpdateStatus applies status and/or paymentStatus.
// PUT /api/orders/:orderId
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("orderId")

	var input models.OrderStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}

	order, ok := h.load(ctx, w, r, orderID)
	if !ok {
		return
	}
	if !canUpdateStatus(order, input, utils.GetUserIDFromRequest(r), utils.GetRoleFromRequest(r)) {
		utils.RespondWithError(w, http.StatusForbidden, "Vous ne pouvez pas modifier cette commande")
		return
	}

	res, err := h.db.Orders.UpdateOne(ctx, bson.M{"id": orderID}, bson.M{"$set": buildStatusUpdate(input, time.Now())})
	if err != nil {
		log.Printf("orders: update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour de la commande")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Commande introuvable")
		return
	}

	if err := h.db.Orders.FindOne(ctx, bson.M{"id": orderID}).Decode(&order); err != nil {
		log.Printf("orders: reload error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour de la commande")
		return
	}

	sellers := SellerIDs(order.Items)
	status := ""
	if input.Status != nil {
		status = *input.Status
	}
	go h.bus.Emit(context.Background(), models.Event{
		EntityType: "order", EntityID: order.ID, Method: "PUT",
		SellerIDs: sellers, Status: status,
	})
	h.hub.Broadcast(sellers, utils.M{"type": "order-updated", "order": order})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"order": order})
}

// load fetches an order and enforces read access.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request, orderID string) (models.Order, bool) {
	var order models.Order
	err := h.db.Orders.FindOne(ctx, bson.M{"id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Commande introuvable")
		return order, false
	}
	if err != nil {
		log.Printf("orders: lookup error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la récupération de la commande")
		return order, false
	}

	userID := utils.GetUserIDFromRequest(r)
	if order.UserID == userID || utils.GetRoleFromRequest(r) == models.RoleAdmin {
		return order, true
	}
	for _, sellerID := range SellerIDs(order.Items) {
		if sellerID == userID {
			return order, true
		}
	}

	utils.RespondWithError(w, http.StatusForbidden, "Accès refusé à cette commande")
	return order, false
}
