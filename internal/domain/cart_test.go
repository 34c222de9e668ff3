package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartTotalSkipsInactiveItems(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Quantity: 2, UnitPrice: 500, IsActive: true},
		{Quantity: 1, UnitPrice: 300, IsActive: true},
		{Quantity: 4, UnitPrice: 1000, IsActive: false},
	}}

	assert.Equal(t, int64(1300), cart.Total())
	assert.Len(t, cart.ActiveItems(), 2)
}

func TestCartTotalEmpty(t *testing.T) {
	cart := Cart{}
	assert.Equal(t, int64(0), cart.Total())
}

func TestCartItemSubTotal(t *testing.T) {
	item := CartItem{Quantity: 3, UnitPrice: 250}
	assert.Equal(t, int64(750), item.SubTotal())
}

func TestIsValidRating(t *testing.T) {
	assert.False(t, IsValidRating(0))
	assert.True(t, IsValidRating(1))
	assert.True(t, IsValidRating(5))
	assert.False(t, IsValidRating(6))
}
