package mq

import (
	"testing"

	"panierbio/models"

	"github.com/stretchr/testify/assert"
)

func TestPendingDelta(t *testing.T) {
	created := models.Event{EntityType: "order", Method: "POST", SellerIDs: []string{"s1"}}
	assert.Equal(t, int64(1), pendingDelta(created))

	completed := models.Event{EntityType: "order", Method: "PUT", Status: models.StatusCompleted}
	assert.Equal(t, int64(-1), pendingDelta(completed))

	// cancellation also clears the pending slot
	cancelled := models.Event{EntityType: "order", Method: "PUT", Status: models.StatusCancelled}
	assert.Equal(t, int64(-1), pendingDelta(cancelled))

	inProgress := models.Event{EntityType: "order", Method: "PUT", Status: "shipped"}
	assert.Equal(t, int64(0), pendingDelta(inProgress))

	review := models.Event{EntityType: "review", Method: "POST"}
	assert.Equal(t, int64(0), pendingDelta(review))
}

func TestPendingKey(t *testing.T) {
	assert.Equal(t, "seller:s1:pending", PendingKey("s1"))
}
