package weight

import (
	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

// Advancer is a best-effort auto-increment of the weight allocated to a
// product each time it is added to the cart again. It is a convenience
// heuristic, not an authoritative allocation scheme. Values never shrink and
// stop at the configured max.
//
// An Advancer belongs to a single session and is not safe for concurrent use.
type Advancer struct {
	current map[string]decimal.Decimal
}

func NewAdvancer() *Advancer {
	return &Advancer{current: make(map[string]decimal.Decimal)}
}

// Next advances and returns the allocated weight for product. It returns nil
// for products not sold by weight. The first call starts from base (clamped
// into range) or cfg.Min.
func (a *Advancer) Next(product domain.Product, cfg domain.WeightConfig, base *decimal.Decimal) (*decimal.Decimal, error) {
	if !product.SoldByWeight {
		return nil, nil
	}
	resolved, err := Resolve(cfg, product.Weight)
	if err != nil {
		return nil, err
	}

	start, ok := a.current[product.ID]
	if !ok {
		start = resolved.Min
		if base != nil {
			start = Clamp(resolved, *base)
		}
	}

	next := start.Add(resolved.Increment)
	if next.GreaterThan(resolved.Max) {
		next = resolved.Max
	}
	a.current[product.ID] = next
	return &next, nil
}

// Current returns the stored weight for productID, if any.
func (a *Advancer) Current(productID string) (decimal.Decimal, bool) {
	w, ok := a.current[productID]
	return w, ok
}

// Reset forgets productID; used when its line is fully removed from the cart.
func (a *Advancer) Reset(productID string) {
	delete(a.current, productID)
}

// ResetAll forgets every product, e.g. when the cart is emptied.
func (a *Advancer) ResetAll() {
	a.current = make(map[string]decimal.Decimal)
}

// Snapshot copies the state for persistence.
func (a *Advancer) Snapshot() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(a.current))
	for k, v := range a.current {
		out[k] = v
	}
	return out
}

// Restore replaces the state with a previously saved snapshot.
func (a *Advancer) Restore(state map[string]decimal.Decimal) {
	a.current = make(map[string]decimal.Decimal, len(state))
	for k, v := range state {
		a.current[k] = v
	}
}
