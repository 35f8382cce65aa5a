// Package cart holds the in-memory line-item collection a session prices.
// Persistence is done by callers over Snapshot/Load.
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

var ErrLineNotFound = errors.New("line not in cart")

// Store keeps line items in insertion order, which is also display order.
// It is scoped to a single session and not safe for concurrent use.
type Store struct {
	items []domain.LineItem
}

func NewStore(snapshot []domain.LineItem) *Store {
	s := &Store{}
	s.Load(snapshot)
	return s
}

// AddOrMerge increments the quantity of the line with the same
// (productId, selectedWeight) key, or appends a new line.
func (s *Store) AddOrMerge(entry domain.LineItem) (domain.LineItem, error) {
	if err := validateEntry(entry); err != nil {
		return domain.LineItem{}, err
	}
	qty := entry.EffectiveQuantity()

	if i := s.index(entry.ProductID, entry.SelectedWeight); i >= 0 {
		s.items[i].Quantity = s.items[i].EffectiveQuantity() + qty
		return copyLine(s.items[i]), nil
	}

	line := copyLine(entry)
	line.Quantity = qty
	s.items = append(s.items, line)
	return copyLine(line), nil
}

// Remove drops the line keyed by (productID, weight). It reports whether a
// line was removed.
func (s *Store) Remove(productID string, weight *decimal.Decimal) bool {
	i := s.index(productID, weight)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *Store) SetQuantity(productID string, weight *decimal.Decimal, quantity int) (removed bool, err error) {
	i := s.index(productID, weight)
	if i < 0 {
		return false, ErrLineNotFound
	}
	if quantity <= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true, nil
	}
	s.items[i].Quantity = quantity
	return false, nil
}

// HasProduct reports whether any line, at any weight, holds productID.
func (s *Store) HasProduct(productID string) bool {
	for _, it := range s.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *Store) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	for i, it := range s.items {
		out[i] = copyLine(it)
	}
	return out
}

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Clear() { s.items = nil }

// Load replaces the contents with a saved snapshot.
func (s *Store) Load(snapshot []domain.LineItem) {
	s.items = make([]domain.LineItem, 0, len(snapshot))
	for _, it := range snapshot {
		s.items = append(s.items, copyLine(it))
	}
}

func (s *Store) index(productID string, weight *decimal.Decimal) int {
	for i, it := range s.items {
		if it.SameLine(productID, weight) {
			return i
		}
	}
	return -1
}

// ValidateLines checks a whole replacement cart: every line must pass the
// entry rules and no two lines may share a (productId, selectedWeight) key.
func ValidateLines(items []domain.LineItem) error {
	for i, it := range items {
		if err := validateEntry(it); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				return domain.NewValidationError(fmt.Sprintf("items[%d].%s", i, verr.Field), "%s", verr.Reason)
			}
			return err
		}
		for j := 0; j < i; j++ {
			if items[j].SameLine(it.ProductID, it.SelectedWeight) {
				return domain.NewValidationError(fmt.Sprintf("items[%d]", i), "duplicates line %d for product %s", j, it.ProductID)
			}
		}
	}
	return nil
}

func validateEntry(e domain.LineItem) error {
	if e.ProductID == "" {
		return domain.NewValidationError("productId", "is required")
	}
	if e.UnitPrice.IsNegative() {
		return domain.NewValidationError("unitPrice", "must not be negative, got %s", e.UnitPrice)
	}
	if e.Quantity < 0 {
		return domain.NewValidationError("quantity", "must be positive, got %d", e.Quantity)
	}
	if e.SoldByWeight != (e.SelectedWeight != nil) {
		return domain.NewValidationError("selectedWeight", "must be set exactly when the product is sold by weight")
	}
	if e.SelectedWeight != nil && !e.SelectedWeight.IsPositive() {
		return domain.NewValidationError("selectedWeight", "must be positive, got %s", e.SelectedWeight)
	}
	return nil
}

func copyLine(l domain.LineItem) domain.LineItem {
	if l.SelectedWeight != nil {
		w := *l.SelectedWeight
		l.SelectedWeight = &w
	}
	return l
}
