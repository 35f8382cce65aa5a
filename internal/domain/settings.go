package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultWeightUnit    = "كجم"
	DefaultCurrencyLabel = "ر.س"
	DefaultEstimatedDays = 3
)

var (
	DefaultWeightMin       = decimal.RequireFromString("0.125")
	DefaultWeightMax       = decimal.NewFromInt(1)
	DefaultWeightIncrement = decimal.RequireFromString("0.125")
)

// WithDefaults fills zero-valued fields. A partially populated snapshot is
// normal while settings are still syncing, so nothing here fails.
func (s Settings) WithDefaults() Settings {
	out := s
	if out.Currency == "" {
		out.Currency = DefaultCurrencyLabel
	}
	out.Weight = out.Weight.WithDefaults()
	if out.Shipping.EstimatedDays <= 0 {
		out.Shipping.EstimatedDays = DefaultEstimatedDays
	}
	if out.Payment.Methods == nil {
		out.Payment.Methods = map[string]bool{}
	}
	return out
}

// WeightFor resolves the weight configuration for a product: the per-product
// override takes precedence field by field over the store-level config.
func (s Settings) WeightFor(productID string) WeightConfig {
	base := s.Weight.WithDefaults()
	override, ok := s.ProductWeights[productID]
	if !ok {
		return base
	}
	return base.Merge(override)
}

// WithDefaults fills a missing min, max, increment or unit.
func (w WeightConfig) WithDefaults() WeightConfig {
	out := w
	if out.Min.IsZero() {
		out.Min = DefaultWeightMin
	}
	if out.Max.IsZero() {
		out.Max = decimal.Max(DefaultWeightMax, out.Min)
	}
	if out.Increment.IsZero() {
		out.Increment = DefaultWeightIncrement
	}
	if out.Unit == "" {
		out.Unit = DefaultWeightUnit
	}
	return out
}

// Merge overlays the non-zero fields of override onto w.
func (w WeightConfig) Merge(override WeightConfig) WeightConfig {
	out := w
	if !override.Min.IsZero() {
		out.Min = override.Min
	}
	if !override.Max.IsZero() {
		out.Max = override.Max
	}
	if !override.Increment.IsZero() {
		out.Increment = override.Increment
	}
	if len(override.AllowedValues) > 0 {
		out.AllowedValues = override.AllowedValues
	}
	if override.Unit != "" {
		out.Unit = override.Unit
	}
	return out
}

// IsActive reports whether the offer is enabled and inside its window.
func (o Offer) IsActive(now time.Time) bool {
	if !o.Enabled {
		return false
	}
	if o.StartTime != nil && now.Before(*o.StartTime) {
		return false
	}
	if o.EndTime != nil && now.After(*o.EndTime) {
		return false
	}
	return true
}

// AppliesToProduct reports whether the offer targets productID. An offer with
// no target list applies to the whole cart.
func (o Offer) AppliesToProduct(productID string) bool {
	if len(o.AppliesTo) == 0 {
		return true
	}
	for _, id := range o.AppliesTo {
		if id == productID {
			return true
		}
	}
	return false
}

func (o Offer) WholeCart() bool {
	return len(o.AppliesTo) == 0
}

func (o Offer) HasCoupon() bool {
	return strings.TrimSpace(o.CouponCode) != ""
}

// MatchesCoupon is a case-insensitive exact match on the coupon code.
func (o Offer) MatchesCoupon(code string) bool {
	return o.HasCoupon() && strings.EqualFold(strings.TrimSpace(o.CouponCode), strings.TrimSpace(code))
}

// Validate rejects offers that indicate an upstream data-entry mistake.
func (o Offer) Validate() error {
	if o.DiscountValue.IsNegative() {
		return NewConfigurationError("offer."+o.ID+".discountValue", "must not be negative, got %s", o.DiscountValue)
	}
	switch o.DiscountType {
	case DiscountPercentage, DiscountFixed:
	default:
		return NewConfigurationError("offer."+o.ID+".discountType", "unknown discount type %q", o.DiscountType)
	}
	return nil
}

// ActiveOffers filters offers down to those active at now.
func ActiveOffers(offers []Offer, now time.Time) []Offer {
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if o.IsActive(now) {
			out = append(out, o)
		}
	}
	return out
}
