// Package engine is the embeddable storefront pricing API: weight options,
// auto-weight, discounts, coupons, shipping and checkout quotes.
package engine

import (
	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/interfaces"
	"github.com/Victor-armando18/storefront-pricing/internal/usecase"
)

type (
	LineItem        = domain.LineItem
	Product         = domain.Product
	WeightConfig    = domain.WeightConfig
	WeightOption    = domain.WeightOption
	Offer           = domain.Offer
	DiscountType    = domain.DiscountType
	ShippingConfig  = domain.ShippingConfig
	PaymentSettings = domain.PaymentSettings
	Settings        = domain.Settings
	PriceSummary    = domain.PriceSummary
	AppliedDiscount = domain.AppliedDiscount
	ExecutionStep   = domain.ExecutionStep
	ShippingQuote   = domain.ShippingQuote
	CouponResult    = domain.CouponResult
	Quote           = domain.Quote

	ConfigurationError = domain.ConfigurationError
	ValidationError    = domain.ValidationError

	AddItemRequest  = usecase.AddItemRequest
	CheckoutRequest = usecase.CheckoutRequest
	CartView        = usecase.CartView

	KeyValueStore = interfaces.KeyValueStore
)

const (
	DiscountPercentage = domain.DiscountPercentage
	DiscountFixed      = domain.DiscountFixed
)

var (
	ErrConfiguration = domain.ErrConfiguration
	ErrValidation    = domain.ErrValidation
)
