package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/currency"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/jsonlogic"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/kv"
	"github.com/Victor-armando18/storefront-pricing/internal/usecase"
)

type options struct {
	store     KeyValueStore
	logger    *zap.Logger
	locale    string
	label     string
	now       func() time.Time
	customOps map[string]func(args ...interface{}) interface{}
}

type Option func(*options)

// WithKeyValueStore persists sessions somewhere other than process memory.
func WithKeyValueStore(store KeyValueStore) Option {
	return func(o *options) { o.store = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCurrency sets the display locale (BCP 47) and currency label.
func WithCurrency(locale, label string) Option {
	return func(o *options) {
		o.locale = locale
		o.label = label
	}
}

// WithClock fixes the time used to decide which offers are active.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCustomOperator makes an extra JsonLogic operator available to offer
// conditions.
func WithCustomOperator(name string, logic func(args ...interface{}) interface{}) Option {
	return func(o *options) { o.customOps[name] = logic }
}

// Storefront is the storefront service bound to a settings file.
type Storefront struct {
	*usecase.StorefrontService
	settings *infrastructure.SnapshotHolder
}

// New loads settingsPath (YAML or JSON) and returns a ready service. Sessions
// live in memory unless WithKeyValueStore is given.
func New(settingsPath string, opts ...Option) (*Storefront, error) {
	o := &options{customOps: map[string]func(args ...interface{}) interface{}{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.store == nil {
		o.store = kv.NewMemoryStore()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	evaluator := jsonlogic.NewEvaluator()
	for name, fn := range o.customOps {
		evaluator.RegisterCustomOperator(name, fn)
	}

	holder := infrastructure.NewSnapshotHolder(infrastructure.NewFileSettingsLoader(settingsPath, evaluator), o.logger)
	if o.now != nil {
		holder.WithClock(o.now)
	}
	if err := holder.Refresh(context.Background()); err != nil {
		return nil, err
	}

	svc := usecase.NewStorefrontService(holder, evaluator, o.store, currency.NewFormatter(o.locale, o.label), o.logger)
	return &Storefront{StorefrontService: svc, settings: holder}, nil
}

// Refresh reloads the settings file. On failure the previous settings stay.
func (s *Storefront) Refresh(ctx context.Context) error {
	return s.settings.Refresh(ctx)
}

// NewSessionID returns a fresh session id.
func NewSessionID() string {
	return usecase.NewSessionID()
}
