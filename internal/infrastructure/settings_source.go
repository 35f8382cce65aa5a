package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/jsonlogic"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/yaml"
	"github.com/Victor-armando18/storefront-pricing/internal/interfaces"
)

// FileSettingsLoader reads a settings snapshot from a YAML or JSON file.
type FileSettingsLoader struct {
	path      string
	evaluator *jsonlogic.Evaluator
}

func NewFileSettingsLoader(path string, evaluator *jsonlogic.Evaluator) *FileSettingsLoader {
	if evaluator == nil {
		evaluator = jsonlogic.NewEvaluator()
	}
	return &FileSettingsLoader{path: path, evaluator: evaluator}
}

func (l *FileSettingsLoader) Load(ctx context.Context) (*domain.Settings, error) {
	var (
		settings domain.Settings
		err      error
	)
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".yaml", ".yml":
		settings, err = yaml.LoadSettings(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", l.path, err)
		}
	default:
		data, readErr := os.ReadFile(l.path)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", l.path, readErr)
		}
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}

	if err := ValidateSettings(settings, l.evaluator); err != nil {
		return nil, err
	}
	out := settings.WithDefaults()
	return &out, nil
}

// ValidateSettings fails on data-entry mistakes: negative discounts, unknown
// discount types, unparseable offer conditions.
func ValidateSettings(s domain.Settings, evaluator *jsonlogic.Evaluator) error {
	for _, o := range s.Offers {
		if err := o.Validate(); err != nil {
			return err
		}
		if evaluator == nil || len(o.Conditions) == 0 {
			continue
		}
		if err := evaluator.Validate(o.Conditions); err != nil {
			return domain.NewConfigurationError("offer."+o.ID+".conditions", "%v", err)
		}
	}
	if s.Shipping.BaseCost.IsNegative() {
		return domain.NewConfigurationError("shipping.baseCost", "must not be negative, got %s", s.Shipping.BaseCost)
	}
	return nil
}

// StaticSettingsLoader always yields the same snapshot.
type StaticSettingsLoader struct {
	Settings domain.Settings
}

func (l StaticSettingsLoader) Load(ctx context.Context) (*domain.Settings, error) {
	out := l.Settings.WithDefaults()
	return &out, nil
}

// SnapshotHolder serves the current immutable settings snapshot. Refresh
// swaps in a whole new snapshot; readers never see a half-updated one.
type SnapshotHolder struct {
	loader  interfaces.SettingsLoader
	current atomic.Pointer[domain.Settings]
	now     func() time.Time
	logger  *zap.Logger
}

var _ interfaces.SettingsSource = (*SnapshotHolder)(nil)

func NewSnapshotHolder(loader interfaces.SettingsLoader, logger *zap.Logger) *SnapshotHolder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotHolder{loader: loader, now: time.Now, logger: logger}
}

// WithClock overrides the clock used to filter offers by window.
func (h *SnapshotHolder) WithClock(now func() time.Time) *SnapshotHolder {
	h.now = now
	return h
}

// Refresh loads a new snapshot. On failure the previous snapshot stays.
func (h *SnapshotHolder) Refresh(ctx context.Context) error {
	s, err := h.loader.Load(ctx)
	if err != nil {
		h.logger.Error("settings refresh failed", zap.Error(err))
		return err
	}
	h.current.Store(s)
	h.logger.Debug("settings refreshed", zap.Int("offers", len(s.Offers)))
	return nil
}

// Run refreshes on every tick until ctx is done. A non-positive interval
// disables refreshing.
func (h *SnapshotHolder) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		h.logger.Warn("settings refresh disabled", zap.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = h.Refresh(ctx)
		}
	}
}

func (h *SnapshotHolder) Snapshot(ctx context.Context) (*domain.Settings, error) {
	if s := h.current.Load(); s != nil {
		return s, nil
	}
	if err := h.Refresh(ctx); err != nil {
		return nil, err
	}
	return h.current.Load(), nil
}

func (h *SnapshotHolder) GetShippingSettings(ctx context.Context) (domain.ShippingConfig, error) {
	s, err := h.Snapshot(ctx)
	if err != nil {
		return domain.ShippingConfig{}, err
	}
	return s.Shipping, nil
}

func (h *SnapshotHolder) GetPaymentSettings(ctx context.Context) (domain.PaymentSettings, error) {
	s, err := h.Snapshot(ctx)
	if err != nil {
		return domain.PaymentSettings{}, err
	}
	return s.Payment, nil
}

// GetActiveOffers returns the enabled offers whose window contains now.
func (h *SnapshotHolder) GetActiveOffers(ctx context.Context) ([]domain.Offer, error) {
	s, err := h.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ActiveOffers(s.Offers, h.now()), nil
}

func (h *SnapshotHolder) GetWeightConfig(ctx context.Context, productID string) (domain.WeightConfig, error) {
	s, err := h.Snapshot(ctx)
	if err != nil {
		return domain.WeightConfig{}, err
	}
	return s.WeightFor(productID), nil
}
