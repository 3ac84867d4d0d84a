package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"panierbio/globals"
	"panierbio/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates bearer tokens and stores the caller's identity in the
// request context. The secret is injected at startup.
type Auth struct {
	secret []byte
	ttl    time.Duration
}

func NewAuth(secret []byte, ttl time.Duration) *Auth {
	return &Auth{secret: secret, ttl: ttl}
}

// Sign issues an access token for the user.
func (a *Auth) Sign(userID, name, role string, jti string) (string, error) {
	claims := &Claims{
		Name:   name,
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Authenticate rejects requests without a valid bearer token.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := a.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Authentification requise")
			return
		}
		next(w, r.WithContext(withClaims(r.Context(), claims)), ps)
	}
}

// OptionalAuth attaches identity when a valid token is present and proceeds
// regardless.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := a.ValidateJWT(r.Header.Get("Authorization")); err == nil {
			r = r.WithContext(withClaims(r.Context(), claims))
		}
		next(w, r, ps)
	}
}

// RequireRole layers a role check on top of Authenticate.
func (a *Auth) RequireRole(role string, next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if got, _ := r.Context().Value(globals.RoleKey).(string); got != role {
			utils.RespondWithError(w, http.StatusForbidden, "Accès refusé")
			return
		}
		next(w, r, ps)
	})
}

// ValidateJWT parses an "Authorization: Bearer <token>" header value.
func (a *Auth) ValidateJWT(header string) (*Claims, error) {
	if len(header) < 8 || header[:7] != "Bearer " {
		return nil, fmt.Errorf("invalid token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(header[7:], claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func withClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, globals.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, globals.UserNameKey, claims.Name)
	return context.WithValue(ctx, globals.RoleKey, claims.Role)
}
