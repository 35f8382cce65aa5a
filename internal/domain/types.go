package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// --- Cart ---

// LineItem is one purchasable entry in a cart. Weight-sold items are keyed by
// (ProductID, SelectedWeight); everything else by ProductID alone.
type LineItem struct {
	ProductID      string           `json:"productId"`
	Name           string           `json:"name"`
	UnitPrice      decimal.Decimal  `json:"unitPrice"`
	Quantity       int              `json:"quantity"`
	SoldByWeight   bool             `json:"soldByWeight"`
	SelectedWeight *decimal.Decimal `json:"selectedWeight,omitempty"`
	WeightUnit     string           `json:"weightUnit,omitempty"`
}

// EffectiveQuantity treats a missing quantity as 1.
func (l LineItem) EffectiveQuantity() int {
	if l.Quantity == 0 {
		return 1
	}
	return l.Quantity
}

// LineTotal is unitPrice × quantity, or unitPrice × selectedWeight × quantity
// for weight-sold items.
func (l LineItem) LineTotal() decimal.Decimal {
	total := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.EffectiveQuantity())))
	if l.SoldByWeight && l.SelectedWeight != nil {
		total = total.Mul(*l.SelectedWeight)
	}
	return total
}

// SameLine reports whether two entries share the merge key.
func (l LineItem) SameLine(productID string, weight *decimal.Decimal) bool {
	if l.ProductID != productID {
		return false
	}
	if l.SelectedWeight == nil || weight == nil {
		return l.SelectedWeight == nil && weight == nil
	}
	return l.SelectedWeight.Equal(*weight)
}

// Product is the subset of catalog data the storefront needs for weight selection.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	SoldByWeight bool            `json:"soldByWeight"`
	Weight       *WeightConfig   `json:"weight,omitempty"`
}

// --- Weight ---

type WeightConfig struct {
	Min           decimal.Decimal   `json:"min"`
	Max           decimal.Decimal   `json:"max"`
	Increment     decimal.Decimal   `json:"increment"`
	AllowedValues []decimal.Decimal `json:"allowedValues,omitempty"`
	Unit          string            `json:"unit,omitempty"`
}

// WeightOption is one purchasable weight choice.
type WeightOption struct {
	Value decimal.Decimal `json:"value"`
	Label string          `json:"label"`
}

// --- Offers ---

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Offer struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	AppliesTo     []string        `json:"appliesTo,omitempty"`
	CouponCode    string          `json:"couponCode,omitempty"`
	StartTime     *time.Time      `json:"startTime,omitempty"`
	EndTime       *time.Time      `json:"endTime,omitempty"`
	Enabled       bool            `json:"enabled"`
	// Conditions is an optional JsonLogic expression evaluated against the cart
	// summary before the offer contributes.
	Conditions map[string]interface{} `json:"conditions,omitempty"`
}

// --- Shipping & payment ---

type ShippingConfig struct {
	BaseCost      decimal.Decimal  `json:"baseCost"`
	FreeThreshold *decimal.Decimal `json:"freeThreshold,omitempty"`
	EstimatedDays int              `json:"estimatedDays"`
}

type PaymentSettings struct {
	Methods map[string]bool `json:"methods"`
}

// Enabled reports whether a payment method may be used at checkout.
func (p PaymentSettings) Enabled(method string) bool {
	return p.Methods[method]
}

// Settings is an immutable snapshot of store configuration. The core never
// mutates a snapshot it was handed; refreshes replace the whole value.
type Settings struct {
	Currency       string                  `json:"currency"`
	Weight         WeightConfig            `json:"weight"`
	ProductWeights map[string]WeightConfig `json:"productWeights,omitempty"`
	Shipping       ShippingConfig          `json:"shipping"`
	Payment        PaymentSettings         `json:"payment"`
	Offers         []Offer                 `json:"offers"`
}

// --- Results ---

type AppliedDiscount struct {
	OfferID string          `json:"offerId"`
	Name    string          `json:"name"`
	Type    DiscountType    `json:"type"`
	Base    decimal.Decimal `json:"base"`
	Amount  decimal.Decimal `json:"amount"`
}

type ExecutionStep struct {
	Phase   string `json:"phase"`
	OfferID string `json:"offerId,omitempty"`
	Message string `json:"message"`
}

// PriceSummary is the outcome of pricing a set of line items.
type PriceSummary struct {
	Subtotal           decimal.Decimal   `json:"subtotal"`
	TotalDiscount      decimal.Decimal   `json:"totalDiscount"`
	TotalAfterDiscount decimal.Decimal   `json:"totalAfterDiscount"`
	Discounts          []AppliedDiscount `json:"discounts"`
	ExecutionLog       []ExecutionStep   `json:"executionLog"`
}

type ShippingQuote struct {
	Cost          decimal.Decimal `json:"cost"`
	Free          bool            `json:"free"`
	EstimatedDays int             `json:"estimatedDays"`
}

// CouponResult is the side-effect-free outcome of validating a coupon code.
type CouponResult struct {
	Valid   bool   `json:"valid"`
	Offer   *Offer `json:"offer,omitempty"`
	Message string `json:"message"`
}

// Quote is the authoritative checkout view of a cart.
type Quote struct {
	Items         []LineItem        `json:"items"`
	Summary       PriceSummary      `json:"summary"`
	Shipping      ShippingQuote     `json:"shipping"`
	GrandTotal    decimal.Decimal   `json:"grandTotal"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	Formatted     map[string]string `json:"formatted"`
	ServerDelta   bool              `json:"serverDelta"`
	Delta         map[string]any    `json:"delta,omitempty"`
	// Correction is the merge patch turning the client's claimed totals
	// into the server's.
	Correction json.RawMessage `json:"correction,omitempty"`
}
