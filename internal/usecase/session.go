package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/cart"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/weight"
	"github.com/Victor-armando18/storefront-pricing/internal/interfaces"
)

func cartKey(sessionID string) string       { return "cart:" + sessionID }
func autoWeightKey(sessionID string) string { return "autoweight:" + sessionID }

// Session is the mutable state of one shopper. Access it only through
// SessionRegistry.View or SessionRegistry.Update.
type Session struct {
	ID      string
	Cart    *cart.Store
	Weights *weight.Advancer
	Coupons []string

	mu sync.Mutex
}

// AddCoupon records code once, ignoring case.
func (s *Session) AddCoupon(code string) {
	code = strings.TrimSpace(code)
	for _, c := range s.Coupons {
		if strings.EqualFold(c, code) {
			return
		}
	}
	s.Coupons = append(s.Coupons, code)
}

// ResetWeightIfGone clears the auto-weight state of productID once no line
// holds it any more.
func (s *Session) ResetWeightIfGone(productID string) {
	if !s.Cart.HasProduct(productID) {
		s.Weights.Reset(productID)
	}
}

func (s *Session) clone() *Session {
	weights := weight.NewAdvancer()
	weights.Restore(s.Weights.Snapshot())
	return &Session{
		ID:      s.ID,
		Cart:    cart.NewStore(s.Cart.Items()),
		Weights: weights,
		Coupons: append([]string(nil), s.Coupons...),
	}
}

type cartRecord struct {
	Items   []domain.LineItem `json:"items"`
	Coupons []string          `json:"coupons,omitempty"`
}

// SessionRegistry hands out sessions, loading them lazily from the key-value
// store and writing them back after each update.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    interfaces.KeyValueStore
}

func NewSessionRegistry(store interfaces.KeyValueStore) *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session), store: store}
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// View runs fn with the session locked and does not persist.
func (r *SessionRegistry) View(ctx context.Context, id string, fn func(*Session) error) error {
	s, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Update runs fn with the session locked on a working copy. The copy is
// persisted and then committed only when fn and the save both succeed, so a
// failed update leaves the session as it was.
func (r *SessionRegistry) Update(ctx context.Context, id string, fn func(*Session) error) error {
	s, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := r.save(ctx, work); err != nil {
		return err
	}
	s.Cart, s.Weights, s.Coupons = work.Cart, work.Weights, work.Coupons
	return nil
}

// get returns the cached session or loads it. The KV read happens outside the
// registry lock; a concurrent load of the same id keeps the first one stored.
func (r *SessionRegistry) get(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("sessionId", "is required")
	}

	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	loaded, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	r.sessions[id] = loaded
	return loaded, nil
}

func (r *SessionRegistry) load(ctx context.Context, id string) (*Session, error) {
	s := &Session{ID: id, Cart: cart.NewStore(nil), Weights: weight.NewAdvancer()}

	raw, ok, err := r.store.Get(ctx, cartKey(id))
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", id, err)
	}
	if ok {
		var rec cartRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode cart %s: %w", id, err)
		}
		s.Cart.Load(rec.Items)
		s.Coupons = rec.Coupons
	}

	raw, ok, err = r.store.Get(ctx, autoWeightKey(id))
	if err != nil {
		return nil, fmt.Errorf("load auto weight %s: %w", id, err)
	}
	if ok {
		state := map[string]decimal.Decimal{}
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, fmt.Errorf("decode auto weight %s: %w", id, err)
		}
		s.Weights.Restore(state)
	}
	return s, nil
}

func (r *SessionRegistry) save(ctx context.Context, s *Session) error {
	cartJSON, err := json.Marshal(cartRecord{Items: s.Cart.Items(), Coupons: s.Coupons})
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, cartKey(s.ID), string(cartJSON)); err != nil {
		return fmt.Errorf("save cart %s: %w", s.ID, err)
	}

	weightsJSON, err := json.Marshal(s.Weights.Snapshot())
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, autoWeightKey(s.ID), string(weightsJSON)); err != nil {
		return fmt.Errorf("save auto weight %s: %w", s.ID, err)
	}
	return nil
}
