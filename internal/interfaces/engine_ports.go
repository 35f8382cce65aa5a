package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

// SettingsLoader produces a fresh settings snapshot (from disk, a database, etc.).
type SettingsLoader interface {
	Load(ctx context.Context) (*domain.Settings, error)
}

// SettingsSource is the read side of the store settings. Every call returns
// data from one immutable snapshot.
type SettingsSource interface {
	Snapshot(ctx context.Context) (*domain.Settings, error)
	GetShippingSettings(ctx context.Context) (domain.ShippingConfig, error)
	GetPaymentSettings(ctx context.Context) (domain.PaymentSettings, error)
	GetActiveOffers(ctx context.Context) ([]domain.Offer, error)
	GetWeightConfig(ctx context.Context, productID string) (domain.WeightConfig, error)
}

// KeyValueStore persists session state as opaque strings.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CurrencyFormatter renders amounts for display.
type CurrencyFormatter interface {
	Format(amount decimal.Decimal) string
}

// StorefrontFacade is the entry point exposed to the outside world.
type StorefrontFacade interface {
	CalculateShippingCost(ctx context.Context, subtotal decimal.Decimal) (domain.ShippingQuote, error)
	CalculateTotalWithDiscounts(ctx context.Context, items []domain.LineItem, couponCodes ...string) (domain.PriceSummary, error)
	ValidateCouponCode(ctx context.Context, code string) (domain.CouponResult, error)
	GetWeightOptions(ctx context.Context, product domain.Product) ([]domain.WeightOption, error)
	NextAutoWeight(ctx context.Context, sessionID string, product domain.Product, base *decimal.Decimal) (*decimal.Decimal, error)
}
