package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/cart"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/coupon"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/engine"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/weight"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/diff"
	"github.com/Victor-armando18/storefront-pricing/internal/interfaces"
)

// StorefrontService wires the pricing core to settings, session state and
// display formatting.
type StorefrontService struct {
	settings  interfaces.SettingsSource
	engine    *engine.Engine
	sessions  *SessionRegistry
	formatter interfaces.CurrencyFormatter
	differ    *diff.Differ
	logger    *zap.Logger
}

var _ interfaces.StorefrontFacade = (*StorefrontService)(nil)

func NewStorefrontService(
	settings interfaces.SettingsSource,
	evaluator engine.ConditionEvaluator,
	store interfaces.KeyValueStore,
	formatter interfaces.CurrencyFormatter,
	logger *zap.Logger,
) *StorefrontService {
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts []engine.Option
	if evaluator != nil {
		opts = append(opts, engine.WithConditionEvaluator(evaluator))
	}
	return &StorefrontService{
		settings:  settings,
		engine:    engine.New(opts...),
		sessions:  NewSessionRegistry(store),
		formatter: formatter,
		differ:    &diff.Differ{},
		logger:    logger,
	}
}

// CalculateShippingCost quotes shipping for a subtotal.
func (s *StorefrontService) CalculateShippingCost(ctx context.Context, subtotal decimal.Decimal) (domain.ShippingQuote, error) {
	if subtotal.IsNegative() {
		return domain.ShippingQuote{}, domain.NewValidationError("subtotal", "must not be negative, got %s", subtotal)
	}
	cfg, err := s.settings.GetShippingSettings(ctx)
	if err != nil {
		return domain.ShippingQuote{}, err
	}
	return engine.ShippingCost(subtotal, cfg), nil
}

// CalculateTotalWithDiscounts prices items against the automatic offers and
// the offers unlocked by couponCodes.
func (s *StorefrontService) CalculateTotalWithDiscounts(ctx context.Context, items []domain.LineItem, couponCodes ...string) (domain.PriceSummary, error) {
	offers, err := s.offersFor(ctx, couponCodes)
	if err != nil {
		return domain.PriceSummary{}, err
	}
	summary, err := s.engine.Price(items, offers)
	if err != nil {
		s.logger.Warn("pricing failed", zap.Int("lines", len(items)), zap.Error(err))
		return domain.PriceSummary{}, err
	}
	return summary, nil
}

// ValidateCouponCode checks code against the active offers without applying it.
func (s *StorefrontService) ValidateCouponCode(ctx context.Context, code string) (domain.CouponResult, error) {
	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return domain.CouponResult{}, err
	}
	offers, err := s.settings.GetActiveOffers(ctx)
	if err != nil {
		return domain.CouponResult{}, err
	}
	return coupon.NewResolver(snapshot.Currency).Validate(code, offers), nil
}

// ApplyCoupon validates code and, when valid, adds it to the session so the
// matching offer takes part in pricing.
func (s *StorefrontService) ApplyCoupon(ctx context.Context, sessionID, code string) (domain.CouponResult, error) {
	res, err := s.ValidateCouponCode(ctx, code)
	if err != nil || !res.Valid {
		return res, err
	}
	err = s.sessions.Update(ctx, sessionID, func(sess *Session) error {
		sess.AddCoupon(code)
		return nil
	})
	if err != nil {
		return domain.CouponResult{}, err
	}
	s.logger.Info("coupon applied", zap.String("session", sessionID), zap.String("offer", res.Offer.ID))
	return res, nil
}

// GetWeightOptions lists the selectable weights for product.
func (s *StorefrontService) GetWeightOptions(ctx context.Context, product domain.Product) ([]domain.WeightOption, error) {
	cfg, err := s.settings.GetWeightConfig(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return weight.Options(cfg, product.Weight)
}

// NextAutoWeight advances the session's auto-weight for product. It returns
// nil for products not sold by weight.
func (s *StorefrontService) NextAutoWeight(ctx context.Context, sessionID string, product domain.Product, base *decimal.Decimal) (*decimal.Decimal, error) {
	var next *decimal.Decimal
	err := s.sessions.Update(ctx, sessionID, func(sess *Session) error {
		var err error
		next, err = s.advance(ctx, sess, product, base)
		return err
	})
	return next, err
}

func (s *StorefrontService) advance(ctx context.Context, sess *Session, product domain.Product, base *decimal.Decimal) (*decimal.Decimal, error) {
	if !product.SoldByWeight {
		return nil, nil
	}
	cfg, err := s.settings.GetWeightConfig(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return sess.Weights.Next(product, cfg, base)
}

// AddItemRequest describes one add-to-cart event.
type AddItemRequest struct {
	Product  domain.Product   `json:"product"`
	Quantity int              `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
	// AutoWeight picks the weight with the session's auto-advancer; Weight,
	// if set, is then only the starting point.
	AutoWeight bool `json:"autoWeight"`
}

// AddItem adds or merges a line into the session cart. A requested weight is
// clamped into range and must then be one of the product's weight options.
func (s *StorefrontService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (domain.LineItem, error) {
	var line domain.LineItem
	err := s.sessions.Update(ctx, sessionID, func(sess *Session) error {
		entry := domain.LineItem{
			ProductID:    req.Product.ID,
			Name:         req.Product.Name,
			UnitPrice:    req.Product.Price,
			Quantity:     req.Quantity,
			SoldByWeight: req.Product.SoldByWeight,
		}

		if req.Product.SoldByWeight {
			w, unit, err := s.selectWeight(ctx, sess, req)
			if err != nil {
				return err
			}
			entry.SelectedWeight = w
			entry.WeightUnit = unit
		}

		var err error
		line, err = sess.Cart.AddOrMerge(entry)
		return err
	})
	if err != nil {
		return domain.LineItem{}, err
	}
	s.logger.Debug("cart line added",
		zap.String("session", sessionID),
		zap.String("product", line.ProductID),
		zap.Int("quantity", line.Quantity))
	return line, nil
}

func (s *StorefrontService) selectWeight(ctx context.Context, sess *Session, req AddItemRequest) (*decimal.Decimal, string, error) {
	cfg, err := s.settings.GetWeightConfig(ctx, req.Product.ID)
	if err != nil {
		return nil, "", err
	}
	resolved, err := weight.Resolve(cfg, req.Product.Weight)
	if err != nil {
		return nil, "", err
	}

	if req.AutoWeight {
		w, err := sess.Weights.Next(req.Product, cfg, req.Weight)
		return w, resolved.Unit, err
	}

	if req.Weight == nil {
		return nil, "", domain.NewValidationError("weight", "is required for products sold by weight")
	}
	w := weight.Clamp(resolved, *req.Weight)
	options, err := weight.Options(cfg, req.Product.Weight)
	if err != nil {
		return nil, "", err
	}
	if !weight.Contains(options, w) {
		return nil, "", domain.NewValidationError("weight", "%s is not one of the weight options", weight.Label(w, resolved.Unit))
	}
	return &w, resolved.Unit, nil
}

// RemoveItem drops the line keyed by (productID, weight). Once no line holds
// the product, its auto-weight state is reset.
func (s *StorefrontService) RemoveItem(ctx context.Context, sessionID, productID string, w *decimal.Decimal) (bool, error) {
	var removed bool
	err := s.sessions.Update(ctx, sessionID, func(sess *Session) error {
		removed = sess.Cart.Remove(productID, w)
		if removed {
			sess.ResetWeightIfGone(productID)
		}
		return nil
	})
	return removed, err
}

// SetQuantity replaces a line's quantity; zero or less removes it.
func (s *StorefrontService) SetQuantity(ctx context.Context, sessionID, productID string, w *decimal.Decimal, quantity int) error {
	return s.sessions.Update(ctx, sessionID, func(sess *Session) error {
		removed, err := sess.Cart.SetQuantity(productID, w, quantity)
		if err != nil {
			return err
		}
		if removed {
			sess.ResetWeightIfGone(productID)
		}
		return nil
	})
}

// PatchCart applies an RFC 6902 patch to the session cart. The patched lines
// must satisfy the same rules as added lines, with unique merge keys, before
// they replace the cart.
func (s *StorefrontService) PatchCart(ctx context.Context, sessionID string, patch []byte) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := s.sessions.Update(ctx, sessionID, func(sess *Session) error {
		before := sess.Cart.Items()
		patched, err := infrastructure.ApplyCartPatch(before, patch)
		if err != nil {
			return err
		}
		if err := engine.ValidateItems(patched); err != nil {
			return err
		}
		if err := cart.ValidateLines(patched); err != nil {
			return err
		}
		sess.Cart.Load(patched)
		for _, it := range before {
			sess.ResetWeightIfGone(it.ProductID)
		}
		items = sess.Cart.Items()
		return nil
	})
	return items, err
}

// ClearCart empties the session cart, its applied coupons and its
// auto-weight state.
func (s *StorefrontService) ClearCart(ctx context.Context, sessionID string) error {
	return s.sessions.Update(ctx, sessionID, func(sess *Session) error {
		sess.Cart.Clear()
		sess.Weights.ResetAll()
		sess.Coupons = nil
		return nil
	})
}

// CartView is a session cart with its current pricing.
type CartView struct {
	SessionID string              `json:"sessionId"`
	Items     []domain.LineItem   `json:"items"`
	Coupons   []string            `json:"coupons,omitempty"`
	Summary   domain.PriceSummary `json:"summary"`
}

func (s *StorefrontService) Cart(ctx context.Context, sessionID string) (CartView, error) {
	var view CartView
	err := s.sessions.View(ctx, sessionID, func(sess *Session) error {
		view.SessionID = sess.ID
		view.Items = sess.Cart.Items()
		view.Coupons = append([]string(nil), sess.Coupons...)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}
	view.Summary, err = s.CalculateTotalWithDiscounts(ctx, view.Items, view.Coupons...)
	if err != nil {
		return CartView{}, err
	}
	return view, nil
}

// CheckoutRequest carries the payment method and, optionally, the totals the
// client computed on its side.
type CheckoutRequest struct {
	PaymentMethod string                     `json:"paymentMethod"`
	Claimed       map[string]decimal.Decimal `json:"claimed,omitempty"`
}

// Checkout prices the session cart authoritatively, adds shipping and
// reports where the client's claimed totals disagree.
func (s *StorefrontService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (domain.Quote, error) {
	view, err := s.Cart(ctx, sessionID)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(view.Items) == 0 {
		return domain.Quote{}, domain.NewValidationError("items", "cart is empty")
	}

	if req.PaymentMethod != "" {
		payment, err := s.settings.GetPaymentSettings(ctx)
		if err != nil {
			return domain.Quote{}, err
		}
		if !payment.Enabled(req.PaymentMethod) {
			return domain.Quote{}, domain.NewValidationError("paymentMethod", "%q is not enabled", req.PaymentMethod)
		}
	}

	shipping, err := s.CalculateShippingCost(ctx, view.Summary.Subtotal)
	if err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{
		Items:         view.Items,
		Summary:       view.Summary,
		Shipping:      shipping,
		GrandTotal:    view.Summary.TotalAfterDiscount.Add(shipping.Cost),
		PaymentMethod: req.PaymentMethod,
	}

	totals := quoteTotals(quote)
	quote.Formatted = make(map[string]string, len(totals))
	for k, v := range totals {
		quote.Formatted[k] = s.formatter.Format(v)
	}

	if len(req.Claimed) > 0 {
		if err := s.reconcile(&quote, totals, req.Claimed); err != nil {
			return domain.Quote{}, err
		}
	}

	s.logger.Info("checkout quoted",
		zap.String("session", sessionID),
		zap.String("grandTotal", quote.GrandTotal.String()),
		zap.Bool("serverDelta", quote.ServerDelta))
	return quote, nil
}

func quoteTotals(q domain.Quote) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"subtotal":           q.Summary.Subtotal,
		"totalDiscount":      q.Summary.TotalDiscount,
		"totalAfterDiscount": q.Summary.TotalAfterDiscount,
		"shipping":           q.Shipping.Cost,
		"grandTotal":         q.GrandTotal,
	}
}

// reconcile compares only the totals the client claimed.
func (s *StorefrontService) reconcile(q *domain.Quote, totals, claimed map[string]decimal.Decimal) error {
	before := map[string]any{}
	after := map[string]any{}
	for k, v := range claimed {
		server, ok := totals[k]
		if !ok {
			continue
		}
		before[k] = v.String()
		after[k] = server.String()
	}

	q.Delta = s.differ.Diff(before, after)
	q.ServerDelta = len(q.Delta) > 0
	if !q.ServerDelta {
		q.Delta = nil
		return nil
	}

	patch, err := s.differ.MergePatch(before, after)
	if err != nil {
		return fmt.Errorf("build correction: %w", err)
	}
	q.Correction = json.RawMessage(patch)
	return nil
}

// offersFor returns the active automatic offers followed by the active offers
// unlocked by codes.
func (s *StorefrontService) offersFor(ctx context.Context, codes []string) ([]domain.Offer, error) {
	active, err := s.settings.GetActiveOffers(ctx)
	if err != nil {
		return nil, err
	}
	offers := make([]domain.Offer, 0, len(active))
	for _, o := range active {
		if !o.HasCoupon() {
			offers = append(offers, o)
		}
	}
	for _, o := range active {
		if !o.HasCoupon() {
			continue
		}
		for _, code := range codes {
			if o.MatchesCoupon(code) {
				offers = append(offers, o)
				break
			}
		}
	}
	return offers, nil
}
