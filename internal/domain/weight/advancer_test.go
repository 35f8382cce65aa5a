package weight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

func TestAdvancer_MonotonicUpToMax(t *testing.T) {
	a := NewAdvancer()
	cfg := eighths()
	p := domain.Product{ID: "rice", SoldByWeight: true}

	prev := decimal.Zero
	for n := 1; n <= 12; n++ {
		w, err := a.Next(p, cfg, nil)
		require.NoError(t, err)
		require.NotNil(t, w)

		want := decimal.Min(cfg.Min.Add(cfg.Increment.Mul(decimal.NewFromInt(int64(n)))), cfg.Max)
		assert.True(t, w.Equal(want), "call %d: got %s want %s", n, w, want)
		assert.True(t, w.GreaterThanOrEqual(prev))
		prev = *w
	}
}

func TestAdvancer_BaseWeightStart(t *testing.T) {
	a := NewAdvancer()
	p := domain.Product{ID: "coffee", SoldByWeight: true}
	base := d("0.5")

	w, err := a.Next(p, eighths(), &base)
	require.NoError(t, err)
	assert.True(t, w.Equal(d("0.625")))

	// base is only honoured on the first call
	w, err = a.Next(p, eighths(), &base)
	require.NoError(t, err)
	assert.True(t, w.Equal(d("0.75")))
}

func TestAdvancer_NotSoldByWeight(t *testing.T) {
	a := NewAdvancer()
	w, err := a.Next(domain.Product{ID: "mug"}, eighths(), nil)
	require.NoError(t, err)
	assert.Nil(t, w)
	_, ok := a.Current("mug")
	assert.False(t, ok)
}

func TestAdvancer_ResetAndSnapshot(t *testing.T) {
	a := NewAdvancer()
	p := domain.Product{ID: "tea", SoldByWeight: true}
	_, _ = a.Next(p, eighths(), nil)
	_, _ = a.Next(p, eighths(), nil)

	snap := a.Snapshot()
	assert.True(t, snap["tea"].Equal(d("0.375")))

	a.Reset("tea")
	w, _ := a.Next(p, eighths(), nil)
	assert.True(t, w.Equal(d("0.25")))

	b := NewAdvancer()
	b.Restore(snap)
	w, _ = b.Next(p, eighths(), nil)
	assert.True(t, w.Equal(d("0.5")))
}

func TestAdvancer_InvalidConfig(t *testing.T) {
	a := NewAdvancer()
	p := domain.Product{ID: "x", SoldByWeight: true}
	_, err := a.Next(p, domain.WeightConfig{Min: d("3"), Max: d("1"), Increment: d("1")}, nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}
