package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsYAML = `
weight:
  min: 0.125
  max: 1
  increment: 0.125
shipping:
  baseCost: 25
  freeThreshold: 300
offers:
  - id: summer
    discountType: percentage
    discountValue: 10
    couponCode: SUMMER10
    enabled: true
  - id: bulk
    discountType: fixed
    discountValue: 15
    enabled: true
    conditions:
      ">=": [{ "round": [{ "var": "cart.subtotal" }, 0] }, 100]
`

func newStorefront(t *testing.T, opts ...Option) *Storefront {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(settingsYAML), 0o644))
	sf, err := New(path, opts...)
	require.NoError(t, err)
	return sf
}

func TestStorefront_CoreOperations(t *testing.T) {
	sf := newStorefront(t, WithCurrency("en", "SAR"))
	ctx := context.Background()

	opts, err := sf.GetWeightOptions(ctx, Product{ID: "rice", SoldByWeight: true})
	require.NoError(t, err)
	assert.Len(t, opts, 8)

	w, err := sf.NextAutoWeight(ctx, NewSessionID(), Product{ID: "rice", SoldByWeight: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.25", w.String())

	res, err := sf.ValidateCouponCode(ctx, "Summer10")
	require.NoError(t, err)
	assert.True(t, res.Valid)

	items := []LineItem{{ProductID: "A", UnitPrice: decimal.NewFromInt(100), Quantity: 2}}
	summary, err := sf.CalculateTotalWithDiscounts(ctx, items, "SUMMER10")
	require.NoError(t, err)
	// 200 - 20 - 15 (condition met)
	assert.Equal(t, "165", summary.TotalAfterDiscount.String())

	small := []LineItem{{ProductID: "A", UnitPrice: decimal.NewFromInt(50), Quantity: 1}}
	summary, err = sf.CalculateTotalWithDiscounts(ctx, small)
	require.NoError(t, err)
	assert.True(t, summary.TotalDiscount.IsZero())

	q, err := sf.CalculateShippingCost(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.True(t, q.Free)
}

func TestStorefront_CustomOperator(t *testing.T) {
	sf := newStorefront(t, WithCustomOperator("always", func(args ...interface{}) interface{} { return true }))
	assert.NotNil(t, sf)
	require.NoError(t, sf.Refresh(context.Background()))
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
