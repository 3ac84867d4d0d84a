package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"panierbio/globals"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestSignAndValidateRoundTrip(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)

	token, err := auth.Sign("u-1", "Awa", "farmer", "jti-1")
	require.NoError(t, err)

	claims, err := auth.ValidateJWT("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "Awa", claims.Name)
	assert.Equal(t, "farmer", claims.Role)
}

func TestValidateJWTRejectsMalformedHeader(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)

	for _, header := range []string{"", "Bearer", "Token abc", "Bearer not-a-jwt"} {
		_, err := auth.ValidateJWT(header)
		assert.Error(t, err, "header %q", header)
	}
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	other := NewAuth([]byte("other-secret"), time.Hour)

	token, err := other.Sign("u-1", "Awa", "consumer", "jti-1")
	require.NoError(t, err)

	_, err = auth.ValidateJWT("Bearer " + token)
	assert.Error(t, err)
}

func TestAuthenticatePutsIdentityInContext(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	token, err := auth.Sign("u-7", "Moussa", "consumer", "jti-7")
	require.NoError(t, err)

	var gotID, gotRole string
	handler := auth.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotID, _ = r.Context().Value(globals.UserIDKey).(string)
		gotRole, _ = r.Context().Value(globals.RoleKey).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-7", gotID)
	assert.Equal(t, "consumer", gotRole)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	handler := auth.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	handler(rec, req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestRequireRole(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)

	adminToken, err := auth.Sign("u-a", "Admin", "admin", "jti-a")
	require.NoError(t, err)
	consumerToken, err := auth.Sign("u-c", "Client", "consumer", "jti-c")
	require.NoError(t, err)

	called := false
	handler := auth.RequireRole("admin", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+consumerToken)
	rec := httptest.NewRecorder()
	handler(rec, req, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestOptionalAuthProceedsWithoutToken(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)

	called := false
	handler := auth.OptionalAuth(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		_, ok := r.Context().Value(globals.UserIDKey).(string)
		assert.False(t, ok)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	handler(rec, req, nil)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
