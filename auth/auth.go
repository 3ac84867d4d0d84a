package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"panierbio/db"
	"panierbio/middleware"
	"panierbio/models"
	"panierbio/rdx"
	"panierbio/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const refreshTokenTTL = 7 * 24 * time.Hour

// Handler serves registration, login and token lifecycle.
type Handler struct {
	db    *db.DB
	cache *rdx.Client
	auth  *middleware.Auth
}

func NewHandler(database *db.DB, cache *rdx.Client, auth *middleware.Auth) *Handler {
	return &Handler{db: database, cache: cache, auth: auth}
}

type registerInput struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	FarmInfo  string `json:"farmInfo"`
	BioStatus string `json:"bioStatus"`
}

// Register creates a user. A duplicate email OR phone — active or not —
// blocks registration with 409.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input registerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}
	if input.Email == "" || input.Phone == "" || input.Password == "" || input.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Champs obligatoires manquants")
		return
	}

	err := h.db.Users.FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": input.Email}, {"phone": input.Phone}},
	}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "Utilisateur déjà existant")
		return
	} else if err != mongo.ErrNoDocuments {
		log.Printf("register: lookup error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'inscription")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("register: bcrypt error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'inscription")
		return
	}

	role := input.Role
	if role == "" {
		role = models.RoleConsumer
	}

	user := models.User{
		ID:           utils.NewID(),
		Email:        input.Email,
		Phone:        input.Phone,
		Password:     string(hashed),
		Name:         input.Name,
		Role:         role,
		FarmInfo:     input.FarmInfo,
		BioStatus:    input.BioStatus,
		Certificates: []string{},
		Addresses:    []string{},
		CreatedAt:    time.Now(),
		Active:       true,
	}

	if _, err := h.db.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Utilisateur déjà existant")
			return
		}
		log.Printf("register: insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'inscription")
		return
	}

	if err := h.cache.Set(ctx, fmt.Sprintf("users:%s", user.ID), user.Name); err != nil {
		log.Printf("register: redis cache failed: %v", err)
	}

	token, refreshToken, err := h.issueTokens(ctx, user)
	if err != nil {
		log.Printf("register: token issue failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de l'inscription")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"user":         user,
		"token":        token,
		"refreshToken": refreshToken,
	})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates by email + password. Unknown email and wrong password
// produce the same message so accounts cannot be enumerated.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}

	var user models.User
	err := h.db.Users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}

	token, refreshToken, err := h.issueTokens(ctx, user)
	if err != nil {
		log.Printf("login: token issue failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la connexion")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"user":         user,
		"token":        token,
		"refreshToken": refreshToken,
	})
}

// Logout drops the cached access token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if err := h.cache.HDel(ctx, "tokki", userID); err != nil {
		log.Printf("logout: redis token remove failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la déconnexion")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// RefreshToken rotates the access token against the stored refresh token.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.RefreshToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Données invalides")
		return
	}

	userID := utils.GetUserIDFromRequest(r)

	var user models.User
	err := h.db.Users.FindOne(ctx, bson.M{"id": userID}).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Session invalide")
		return
	}

	if user.RefreshToken != hashToken(input.RefreshToken) || time.Now().After(user.RefreshExpiry) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Session expirée, reconnectez-vous")
		return
	}

	token, refreshToken, err := h.issueTokens(ctx, user)
	if err != nil {
		log.Printf("refresh: token issue failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Erreur lors de la connexion")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":        token,
		"refreshToken": refreshToken,
	})
}

// issueTokens signs an access token, rotates the refresh token, and records
// the hashed refresh + last login on the user document.
func (h *Handler) issueTokens(ctx context.Context, user models.User) (string, string, error) {
	token, err := h.auth.Sign(user.ID, user.Name, user.Role, uuid.NewString())
	if err != nil {
		return "", "", err
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return "", "", err
	}

	_, err = h.db.Users.UpdateOne(ctx,
		bson.M{"id": user.ID},
		bson.M{"$set": bson.M{
			"refreshToken":  hashToken(refreshToken),
			"refreshExpiry": time.Now().Add(refreshTokenTTL),
			"lastLogin":     time.Now(),
		}},
	)
	if err != nil {
		return "", "", err
	}

	if err := h.cache.HSet(ctx, "tokki", user.ID, token); err != nil {
		log.Printf("auth: redis token store failed: %v", err)
	}

	return token, refreshToken, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
