package deduction

import (
	"testing"

	"venue-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vodka() models.Ingredient {
	return models.Ingredient{ID: 7, Name: "Vodka", Unit: "ml", Stock: 5, Quantity: 20, OriginalQuantity: 100}
}

func TestConsumeFromOpenedUnit(t *testing.T) {
	c, err := Consume(vodka(), 20)
	require.NoError(t, err)
	assert.Equal(t, Consumption{Stock: 5, Quantity: 0}, c)
}

func TestConsumeOpensUnits(t *testing.T) {
	c, err := Consume(vodka(), 150)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Stock)
	assert.InDelta(t, 70, c.Quantity, 1e-9)
	assert.Equal(t, 2, c.UnitsOpened)
}

func TestConsumeExactlyOneExtraUnit(t *testing.T) {
	c, err := Consume(vodka(), 120)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Stock)
	assert.Equal(t, 0.0, c.Quantity)
	assert.Equal(t, 1, c.UnitsOpened)
}

func TestConsumeEverything(t *testing.T) {
	c, err := Consume(vodka(), 520)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Stock)
	assert.Equal(t, 0.0, c.Quantity)
}

func TestConsumeMoreThanAvailable(t *testing.T) {
	_, err := Consume(vodka(), 520.5)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, uint(7), insufficient.ID)
	assert.Equal(t, "Vodka", insufficient.Name)
	assert.Equal(t, 520.0, insufficient.Available)
	assert.Equal(t, 520.5, insufficient.Required)
}

func TestConsumeWithoutSealedUnits(t *testing.T) {
	ing := vodka()
	ing.Stock = 0

	_, err := Consume(ing, 21)
	assert.True(t, IsInsufficientStock(err))

	c, err := Consume(ing, 15)
	require.NoError(t, err)
	assert.Equal(t, Consumption{Stock: 0, Quantity: 5}, c)
}

func TestConsumeFloatingPointSums(t *testing.T) {
	ing := models.Ingredient{Name: "Syrup", Stock: 1, Quantity: 0.3, OriginalQuantity: 1}

	c, err := Consume(ing, 0.1+0.2)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Stock, "0.1+0.2 must not open a new unit")
	assert.Equal(t, 0.0, c.Quantity)
}

func TestConsumeRejectsNegative(t *testing.T) {
	_, err := Consume(vodka(), -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestConsumeKeepsInvariants(t *testing.T) {
	base := vodka()
	for need := 0.0; need <= 520; need += 7.5 {
		c, err := Consume(base, need)
		require.NoError(t, err, "need=%v", need)
		assert.GreaterOrEqual(t, c.Stock, 0)
		assert.GreaterOrEqual(t, c.Quantity, 0.0)
		assert.LessOrEqual(t, c.Quantity, base.OriginalQuantity)

		before := base.Quantity + float64(base.Stock)*base.OriginalQuantity
		after := c.Quantity + float64(c.Stock)*base.OriginalQuantity
		assert.InDelta(t, need, before-after, 1e-6, "need=%v", need)
	}
}

func TestConsumeLargeStockOpensUnitsArithmetically(t *testing.T) {
	ing := models.Ingredient{Name: "Water", Stock: 1_000_000_000, Quantity: 0, OriginalQuantity: 1}

	c, err := Consume(ing, 500_000_000.5)
	require.NoError(t, err)
	assert.Equal(t, 500_000_001, c.UnitsOpened)
	assert.Equal(t, 499_999_999, c.Stock)
	assert.InDelta(t, 0.5, c.Quantity, 1e-6)
}
