package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSellerRole(t *testing.T) {
	assert.True(t, IsSellerRole(RoleFarmer))
	assert.True(t, IsSellerRole(RoleSupplier))
	assert.True(t, IsSellerRole(RoleProcessor))
	assert.True(t, IsSellerRole(RoleAdmin))

	assert.False(t, IsSellerRole(RoleConsumer))
	assert.False(t, IsSellerRole(""))
	assert.False(t, IsSellerRole("guest"))
}
