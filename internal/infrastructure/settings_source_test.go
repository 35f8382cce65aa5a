package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/jsonlogic"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSettingsLoader_YAMLAndJSON(t *testing.T) {
	yamlPath := writeFile(t, "settings.yml", `
shipping:
  baseCost: 15
offers:
  - id: a
    discountType: fixed
    discountValue: 5
    enabled: true
`)
	s, err := NewFileSettingsLoader(yamlPath, nil).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Shipping.BaseCost.Equal(decimal.NewFromInt(15)))
	// defaults filled in
	assert.Equal(t, domain.DefaultCurrencyLabel, s.Currency)
	assert.Equal(t, domain.DefaultEstimatedDays, s.Shipping.EstimatedDays)
	assert.True(t, s.Weight.Min.Equal(domain.DefaultWeightMin))

	jsonPath := writeFile(t, "settings.json", `{"shipping":{"baseCost":"9.5"},"offers":[]}`)
	s, err = NewFileSettingsLoader(jsonPath, nil).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Shipping.BaseCost.Equal(decimal.RequireFromString("9.5")))
}

func TestFileSettingsLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  error
	}{
		{"negative discount", "s.yaml", "offers:\n  - id: x\n    discountType: fixed\n    discountValue: -1\n", domain.ErrConfiguration},
		{"unknown type", "s.yaml", "offers:\n  - id: x\n    discountType: bogo\n    discountValue: 1\n", domain.ErrConfiguration},
		{"negative shipping", "s.json", `{"shipping":{"baseCost":-3}}`, domain.ErrConfiguration},
		{"bad conditions", "s.json", `{"offers":[{"id":"x","discountType":"fixed","discountValue":1,"conditions":{"nope_op":[1]}}]}`, domain.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := NewFileSettingsLoader(path, jsonlogic.NewEvaluator()).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	_, err := NewFileSettingsLoader(filepath.Join(t.TempDir(), "missing.yaml"), nil).Load(context.Background())
	assert.Error(t, err)

	_, err = NewFileSettingsLoader(writeFile(t, "s.json", "{"), nil).Load(context.Background())
	assert.Error(t, err)
}

type flakyLoader struct {
	settings *domain.Settings
	err      error
	calls    int
}

func (f *flakyLoader) Load(ctx context.Context) (*domain.Settings, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func TestSnapshotHolder_KeepsPreviousOnFailure(t *testing.T) {
	first := domain.Settings{Shipping: domain.ShippingConfig{BaseCost: decimal.NewFromInt(10)}}.WithDefaults()
	loader := &flakyLoader{settings: &first}
	h := NewSnapshotHolder(loader, nil)
	ctx := context.Background()

	cfg, err := h.GetShippingSettings(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.BaseCost.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, loader.calls)

	loader.err = errors.New("remote store down")
	require.Error(t, h.Refresh(ctx))

	cfg, err = h.GetShippingSettings(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.BaseCost.Equal(decimal.NewFromInt(10)))

	second := domain.Settings{Shipping: domain.ShippingConfig{BaseCost: decimal.NewFromInt(12)}}.WithDefaults()
	loader.err = nil
	loader.settings = &second
	require.NoError(t, h.Refresh(ctx))
	cfg, _ = h.GetShippingSettings(ctx)
	assert.True(t, cfg.BaseCost.Equal(decimal.NewFromInt(12)))
	// the old snapshot was not touched
	assert.True(t, first.Shipping.BaseCost.Equal(decimal.NewFromInt(10)))
}

func TestSnapshotHolder_NoSnapshotYet(t *testing.T) {
	h := NewSnapshotHolder(&flakyLoader{err: errors.New("boom")}, nil)
	_, err := h.GetActiveOffers(context.Background())
	assert.Error(t, err)
}

func TestSnapshotHolder_ActiveOffersAndWeights(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	settings := domain.Settings{
		ProductWeights: map[string]domain.WeightConfig{"coffee": {Max: decimal.NewFromInt(2)}},
		Offers: []domain.Offer{
			{ID: "summer", DiscountType: domain.DiscountPercentage, Enabled: true, StartTime: &start, EndTime: &end},
			{ID: "always", DiscountType: domain.DiscountFixed, Enabled: true},
			{ID: "off", DiscountType: domain.DiscountFixed},
		},
	}

	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	h := NewSnapshotHolder(StaticSettingsLoader{Settings: settings}, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	offers, err := h.GetActiveOffers(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "always", offers[0].ID)

	now = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	offers, err = h.GetActiveOffers(ctx)
	require.NoError(t, err)
	assert.Len(t, offers, 2)

	w, err := h.GetWeightConfig(ctx, "coffee")
	require.NoError(t, err)
	assert.True(t, w.Max.Equal(decimal.NewFromInt(2)))
	assert.True(t, w.Min.Equal(domain.DefaultWeightMin))

	pay, err := h.GetPaymentSettings(ctx)
	require.NoError(t, err)
	assert.False(t, pay.Enabled("card"))
}

func TestSnapshotHolder_Run(t *testing.T) {
	loader := &flakyLoader{settings: &domain.Settings{}}
	h := NewSnapshotHolder(loader, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	h.Run(ctx, 5*time.Millisecond)
	assert.Greater(t, loader.calls, 1)
}

func TestSnapshotHolder_RunNonPositiveInterval(t *testing.T) {
	loader := &flakyLoader{settings: &domain.Settings{}}
	h := NewSnapshotHolder(loader, nil)
	h.Run(context.Background(), 0)
	h.Run(context.Background(), -time.Second)
	assert.Equal(t, 0, loader.calls)
}
