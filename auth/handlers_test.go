package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"panierbio/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"golang.org/x/crypto/bcrypt"
)

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRegisterRejectsDuplicateEmailOrPhone(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing account", func(mt *mtest.T) {
		h := &Handler{db: &db.DB{Users: mt.Coll}}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "u1"},
			{Key: "email", Value: "fatou@example.sn"},
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
			`{"email":"fatou@example.sn","phone":"770000000","password":"secret","name":"Fatou"}`))
		rec := httptest.NewRecorder()
		h.Register(rec, req, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Utilisateur déjà existant", errorBody(t, rec))
	})

	mt.Run("index race", func(mt *mtest.T) {
		h := &Handler{db: &db.DB{Users: mt.Coll}}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		// lookup sees nothing, the unique index still catches the insert
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "duplicate key",
			}),
		)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
			`{"email":"fatou@example.sn","phone":"770000000","password":"secret","name":"Fatou"}`))
		rec := httptest.NewRecorder()
		h.Register(rec, req, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Utilisateur déjà existant", errorBody(t, rec))
	})
}

func TestLoginFailuresAreUniform(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	hashed, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)

	var unknownEmail, wrongPassword string

	mt.Run("unknown email", func(mt *mtest.T) {
		h := &Handler{db: &db.DB{Users: mt.Coll}}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(
			`{"email":"nobody@example.sn","password":"whatever"}`))
		rec := httptest.NewRecorder()
		h.Login(rec, req, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		unknownEmail = errorBody(t, rec)
	})

	mt.Run("wrong password", func(mt *mtest.T) {
		h := &Handler{db: &db.DB{Users: mt.Coll}}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "u1"},
			{Key: "email", Value: "fatou@example.sn"},
			{Key: "password", Value: string(hashed)},
			{Key: "name", Value: "Fatou"},
			{Key: "role", Value: "consumer"},
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(
			`{"email":"fatou@example.sn","password":"wrong-password"}`))
		rec := httptest.NewRecorder()
		h.Login(rec, req, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		wrongPassword = errorBody(t, rec)
	})

	// the two failures must be indistinguishable
	assert.Equal(t, unknownEmail, wrongPassword)
	assert.Equal(t, "Email ou mot de passe incorrect", wrongPassword)
}
