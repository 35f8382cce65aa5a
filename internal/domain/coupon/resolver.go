// Package coupon matches submitted coupon codes against active offers.
package coupon

import (
	"fmt"
	"strings"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

const MsgInvalidCode = "invalid code"

// Resolver validates codes without touching the offer set used for pricing;
// adding a matched offer to the cart is the caller's job.
type Resolver struct {
	CurrencyLabel string
}

func NewResolver(currencyLabel string) *Resolver {
	if currencyLabel == "" {
		currencyLabel = domain.DefaultCurrencyLabel
	}
	return &Resolver{CurrencyLabel: currencyLabel}
}

// Validate returns the first active offer whose coupon code matches code,
// ignoring case. An unmatched code is a normal outcome, not an error.
func (r *Resolver) Validate(code string, activeOffers []domain.Offer) domain.CouponResult {
	if strings.TrimSpace(code) == "" {
		return domain.CouponResult{Valid: false, Message: MsgInvalidCode}
	}
	for _, o := range activeOffers {
		if !o.MatchesCoupon(code) {
			continue
		}
		matched := o
		return domain.CouponResult{Valid: true, Offer: &matched, Message: r.Describe(o)}
	}
	return domain.CouponResult{Valid: false, Message: MsgInvalidCode}
}

// Describe renders the discount an offer grants, e.g. "10% off" or "25 ر.س off".
func (r *Resolver) Describe(o domain.Offer) string {
	var amount string
	switch o.DiscountType {
	case domain.DiscountPercentage:
		amount = o.DiscountValue.String() + "%"
	default:
		amount = o.DiscountValue.String() + " " + r.CurrencyLabel
	}
	msg := fmt.Sprintf("coupon %s applied: %s off", strings.ToUpper(strings.TrimSpace(o.CouponCode)), amount)
	if !o.WholeCart() {
		msg += " selected products"
	}
	return msg
}
