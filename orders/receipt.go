package orders

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"panierbio/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// QRPayload builds the signed pickup-verification string embedded in the
// receipt QR: orderId|userId|timestamp|signature.
func QRPayload(key []byte, orderID, userID string, ts int64) string {
	data := fmt.Sprintf("%s|%s|%d", orderID, userID, ts)
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return data + "|" + sig
}

// VerifyQRPayload checks the signature and returns the order id it covers.
func VerifyQRPayload(key []byte, payload string) (string, bool) {
	idx := strings.LastIndexByte(payload, '|')
	if idx < 0 {
		return "", false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}

	parts := strings.Split(data, "|")
	if len(parts) != 3 {
		return "", false
	}
	return parts[0], true
}

// Receipt renders the order as a PDF with a signed QR code for pickup
// verification. Accessible to the buyer, the order's sellers and admins.
// GET /api/orders/:orderId/receipt
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, ok := h.load(ctx, w, r, ps.ByName("orderId"))
	if !ok {
		return
	}

	payload := QRPayload(h.signKey, order.ID, order.UserID, time.Now().Unix())
	qrPNG, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		log.Printf("orders: qr encode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la génération du reçu")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Sen Panier Bio - Reçu de commande")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Commande: %s", order.ID))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Client: %s", order.UserName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", order.CreatedAt.Format("02/01/2006 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Livraison: %s - %s", order.DeliveryMethod, order.DeliveryAddress))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(90, 8, "Produit")
	pdf.Cell(30, 8, "Qté")
	pdf.Cell(30, 8, "Prix")
	pdf.Cell(30, 8, "Montant")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	for _, item := range order.Items {
		pdf.Cell(90, 8, item.Name)
		pdf.Cell(30, 8, fmt.Sprintf("%d %s", item.Quantity, item.Unit))
		pdf.Cell(30, 8, fmt.Sprintf("%.0f FCFA", item.Price))
		pdf.Cell(30, 8, fmt.Sprintf("%.0f FCFA", item.Price*float64(item.Quantity)))
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.Cell(0, 8, fmt.Sprintf("Sous-total: %.0f FCFA", order.Subtotal))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Livraison: %.0f FCFA", order.DeliveryFee))
	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.0f FCFA", order.Total))
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 10, pdf.GetY(), 50, 50, false, opts, 0, "")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="recu-%s.pdf"`, order.ID))
	if err := pdf.Output(w); err != nil {
		log.Printf("orders: pdf output error: %v", err)
	}
}
