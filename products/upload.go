package products

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"panierbio/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadImage attaches a photo to a product: the original is re-encoded and
// a 300px-wide thumbnail is generated next to it. Seller-only.
// POST /api/products/:productId/image
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	productID := ps.ByName("productId")
	if _, ok := h.authorize(ctx, w, r, productID); !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Formulaire invalide")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image manquante")
		return
	}
	defer file.Close()

	if !supportedImageTypes[header.Header.Get("Content-Type")] {
		utils.RespondWithError(w, http.StatusBadRequest, "Format d'image non supporté (JPEG, PNG, WebP)")
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image illisible")
		return
	}

	dir := filepath.Join(h.uploadDir, "products")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("products: upload dir error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'enregistrement de l'image")
		return
	}

	name := uuid.New().String()
	originalPath := filepath.Join(dir, name+".jpg")
	thumbPath := filepath.Join(dir, name+"_thumb.jpg")

	if err := imaging.Save(img, originalPath); err != nil {
		log.Printf("products: save image error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'enregistrement de l'image")
		return
	}

	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		log.Printf("products: save thumbnail error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'enregistrement de l'image")
		return
	}

	imageURL := fmt.Sprintf("/static/uploads/products/%s.jpg", name)
	_, err = h.db.Products.UpdateOne(ctx,
		bson.M{"id": productID},
		bson.M{"$set": bson.M{"image": imageURL, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("products: image update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour du produit")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": imageURL})
}
