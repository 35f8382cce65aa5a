package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

// CurrencyPlaces is the precision discounts are rounded to.
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Engine prices line items against a set of active offers. It holds no
// per-call state, so the same inputs always give the same summary.
type Engine struct {
	conditions ConditionEvaluator
}

type Option func(*Engine)

// WithConditionEvaluator enables offer conditions. Without an evaluator,
// offers that carry conditions are skipped.
func WithConditionEvaluator(ev ConditionEvaluator) Option {
	return func(e *Engine) { e.conditions = ev }
}

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Price computes subtotal, per-offer contributions, total discount and the
// clipped total. Offers are taken as given: filtering by activity window and
// coupon selection happen upstream.
func (e *Engine) Price(items []domain.LineItem, offers []domain.Offer) (domain.PriceSummary, error) {
	if err := ValidateItems(items); err != nil {
		return domain.PriceSummary{}, err
	}
	for _, o := range offers {
		if err := o.Validate(); err != nil {
			return domain.PriceSummary{}, err
		}
	}

	log := &executionLog{}

	subtotal := decimal.Zero
	itemCount := 0
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
		itemCount += it.EffectiveQuantity()
	}
	log.add(Subtotal, "", "subtotal %s over %d lines", subtotal, len(items))

	cartData := map[string]interface{}{
		"cart": map[string]interface{}{
			"subtotal":  subtotal.InexactFloat64(),
			"itemCount": itemCount,
			"lineCount": len(items),
		},
	}

	summary := domain.PriceSummary{
		Subtotal:      subtotal,
		TotalDiscount: decimal.Zero,
		Discounts:     []domain.AppliedDiscount{},
	}

	for _, phase := range discountPhases {
		for _, o := range offers {
			if p, _ := phaseFor(string(o.DiscountType)); p != phase {
				continue
			}

			ok, err := e.conditionsHold(o, cartData)
			if err != nil {
				return domain.PriceSummary{}, err
			}
			if !ok {
				log.add(phase, o.ID, "skipped: conditions not met")
				continue
			}

			base := eligibleBase(o, items, subtotal)
			amount := contribution(o, base)
			summary.TotalDiscount = summary.TotalDiscount.Add(amount)
			summary.Discounts = append(summary.Discounts, domain.AppliedDiscount{
				OfferID: o.ID,
				Name:    o.Name,
				Type:    o.DiscountType,
				Base:    base,
				Amount:  amount,
			})
			log.add(phase, o.ID, "discount %s on base %s", amount, base)
		}
	}

	summary.TotalAfterDiscount = decimal.Max(decimal.Zero, subtotal.Sub(summary.TotalDiscount))
	if summary.TotalDiscount.GreaterThan(subtotal) {
		log.add(Totals, "", "discount %s exceeds subtotal, total clipped to 0", summary.TotalDiscount)
	}
	log.add(Totals, "", "total %s after discount %s", summary.TotalAfterDiscount, summary.TotalDiscount)

	summary.ExecutionLog = log.steps
	return summary, nil
}

func (e *Engine) conditionsHold(o domain.Offer, data map[string]interface{}) (bool, error) {
	if len(o.Conditions) == 0 {
		return true, nil
	}
	if e.conditions == nil {
		return false, nil
	}
	ok, err := e.conditions.Evaluate(o.Conditions, data)
	if err != nil {
		return false, fmt.Errorf("%w: offer %s: %v", domain.ErrConditionFailed, o.ID, err)
	}
	return ok, nil
}

// eligibleBase is the subtotal for whole-cart offers, otherwise the sum of the
// targeted lines.
func eligibleBase(o domain.Offer, items []domain.LineItem, subtotal decimal.Decimal) decimal.Decimal {
	if o.WholeCart() {
		return subtotal
	}
	base := decimal.Zero
	for _, it := range items {
		if o.AppliesToProduct(it.ProductID) {
			base = base.Add(it.LineTotal())
		}
	}
	return base
}

func contribution(o domain.Offer, base decimal.Decimal) decimal.Decimal {
	switch o.DiscountType {
	case domain.DiscountPercentage:
		amount := base.Mul(o.DiscountValue).Div(hundred).Round(CurrencyPlaces)
		// rounding must not push an offer of at most 100% past its base
		if amount.GreaterThan(base) && o.DiscountValue.LessThanOrEqual(hundred) {
			return base
		}
		return amount
	case domain.DiscountFixed:
		return decimal.Min(o.DiscountValue, base)
	}
	return decimal.Zero
}

// ShippingCost is zero when a free threshold is set and reached, otherwise
// the base cost.
func ShippingCost(subtotal decimal.Decimal, cfg domain.ShippingConfig) domain.ShippingQuote {
	days := cfg.EstimatedDays
	if days <= 0 {
		days = domain.DefaultEstimatedDays
	}
	if cfg.FreeThreshold != nil && subtotal.GreaterThanOrEqual(*cfg.FreeThreshold) {
		return domain.ShippingQuote{Cost: decimal.Zero, Free: true, EstimatedDays: days}
	}
	return domain.ShippingQuote{Cost: cfg.BaseCost, EstimatedDays: days}
}

// ValidateItems rejects negative prices, negative quantities and weight-sold
// lines without a positive selected weight. A zero quantity means 1.
func ValidateItems(items []domain.LineItem) error {
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID == "" {
			return domain.NewValidationError(field+".productId", "is required")
		}
		if it.UnitPrice.IsNegative() {
			return domain.NewValidationError(field+".unitPrice", "must not be negative, got %s", it.UnitPrice)
		}
		if it.Quantity < 0 {
			return domain.NewValidationError(field+".quantity", "must be positive, got %d", it.Quantity)
		}
		if it.SoldByWeight && (it.SelectedWeight == nil || !it.SelectedWeight.IsPositive()) {
			return domain.NewValidationError(field+".selectedWeight", "must be a positive weight for products sold by weight")
		}
	}
	return nil
}
