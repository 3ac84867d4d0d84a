package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"panierbio/db"
	"panierbio/globals"
	"panierbio/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBuildListFilterAlwaysActiveOnly(t *testing.T) {
	filter := buildListFilter("", "", "")
	assert.Equal(t, bson.M{"active": true}, filter)
}

func TestBuildListFilterExactMatches(t *testing.T) {
	filter := buildListFilter("legumes", "bio", "")
	assert.Equal(t, true, filter["active"])
	assert.Equal(t, "legumes", filter["category"])
	assert.Equal(t, "bio", filter["bioStatus"])
	assert.NotContains(t, filter, "$or")
}

func TestBuildListFilterSearchCoversNameAndDescription(t *testing.T) {
	filter := buildListFilter("", "", "tomate")

	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Contains(t, or[0], "name")
	assert.Contains(t, or[1], "description")
}

func TestBuildUpdateOnlyTouchesProvidedFields(t *testing.T) {
	now := time.Now()
	name := "Mangues bio"
	stock := 12

	set := buildUpdate(models.ProductUpdate{Name: &name, Stock: &stock}, now)

	assert.Equal(t, now, set["updatedAt"])
	assert.Equal(t, "Mangues bio", set["name"])
	assert.Equal(t, 12, set["stock"])
	assert.NotContains(t, set, "price")
	assert.NotContains(t, set, "active")
}

func TestBuildUpdateAlwaysRefreshesUpdatedAt(t *testing.T) {
	now := time.Now()
	set := buildUpdate(models.ProductUpdate{}, now)
	assert.Equal(t, bson.M{"updatedAt": now}, set)
}

func TestNumericAcceptsStringsAndNumbers(t *testing.T) {
	var in struct {
		Price numeric `json:"price"`
		Stock numeric `json:"stock"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"price":"1500","stock":10}`), &in))
	assert.Equal(t, numeric("1500"), in.Price)
	assert.Equal(t, numeric("10"), in.Stock)

	require.NoError(t, json.Unmarshal([]byte(`{"price":2500.5,"stock":null}`), &in))
	assert.Equal(t, numeric("2500.5"), in.Price)
	assert.Equal(t, numeric(""), in.Stock)
}

func TestDeleteIsIdempotent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("already inactive", func(mt *mtest.T) {
		h := &Handler{db: &db.DB{Products: mt.Coll}}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "id", Value: "p1"},
				{Key: "sellerId", Value: "s1"},
				{Key: "active", Value: false},
			}),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 0},
			),
		)

		req := httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil)
		ctx := context.WithValue(req.Context(), globals.UserIDKey, "s1")
		ctx = context.WithValue(ctx, globals.RoleKey, models.RoleFarmer)
		rec := httptest.NewRecorder()
		h.Delete(rec, req.WithContext(ctx), httprouter.Params{{Key: "productId", Value: "p1"}})

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body["success"])
	})
}
