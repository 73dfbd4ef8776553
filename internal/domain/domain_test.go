package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "mechanical-keyboard", Slugify("Mechanical Keyboard"))
	assert.Equal(t, "usb-c-hub-4-port", Slugify("USB-C Hub (4 Port)"))
	assert.Equal(t, "café", Slugify("  Café  "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
}

func TestProductUnitPrice(t *testing.T) {
	p := Product{}
	assert.True(t, p.UnitPrice().IsZero())

	p.Price = decimal.NewNullDecimal(decimal.RequireFromString("19.99"))
	assert.True(t, p.UnitPrice().Equal(decimal.RequireFromString("19.99")))
}

func TestIdentityOwns(t *testing.T) {
	owner := Identity{UserID: 7}
	assert.True(t, owner.Owns(7))
	assert.False(t, owner.Owns(8))

	admin := Identity{UserID: 1, IsAdmin: true}
	assert.True(t, admin.Owns(8))
}

func TestPricedCartLineEffectivePrice(t *testing.T) {
	line := PricedCartLine{Quantity: 2}
	assert.True(t, line.EffectivePrice().IsZero())

	line.UnitPrice = decimal.NewNullDecimal(decimal.RequireFromString("5.00"))
	assert.True(t, line.EffectivePrice().Equal(decimal.RequireFromString("5.00")))
}