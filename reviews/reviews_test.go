package reviews

import (
	"testing"
	"time"

	"panierbio/models"

	"github.com/stretchr/testify/assert"
)

func TestMeanRating(t *testing.T) {
	reviews := []models.Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 2},
	}
	assert.InDelta(t, 3.6667, MeanRating(reviews), 0.001)
}

func TestMeanRatingEmptyIsZero(t *testing.T) {
	assert.Equal(t, float64(0), MeanRating(nil))
	assert.Equal(t, float64(0), MeanRating([]models.Review{}))
}

func TestLockProductSerializesPerProduct(t *testing.T) {
	h := NewHandler(nil, nil)

	a := h.lockProduct("p1")
	c := h.lockProduct("p2")

	done := make(chan *lockEntry)
	go func() {
		done <- h.lockProduct("p1")
	}()

	select {
	case <-done:
		t.Fatal("second holder acquired the lock while the first still held it")
	case <-time.After(20 * time.Millisecond):
	}

	h.unlockProduct("p1", a)
	b := <-done
	assert.Same(t, a, b)

	h.unlockProduct("p1", b)
	h.unlockProduct("p2", c)
}

func TestLockProductPrunesIdleEntries(t *testing.T) {
	h := NewHandler(nil, nil)

	entry := h.lockProduct("p1")
	assert.Len(t, h.locks, 1)

	h.unlockProduct("p1", entry)
	assert.Empty(t, h.locks)
}
