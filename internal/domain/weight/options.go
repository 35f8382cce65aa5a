// Package weight derives purchasable weight choices for products sold by
// weight and tracks the auto-advanced weight per product.
package weight

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

// maxOptions bounds the synthesized progression so a tiny increment cannot
// produce an unbounded list.
const maxOptions = 10000

// Epsilon absorbs representation drift when max should be exactly reachable.
var Epsilon = decimal.New(1, -9)

// Resolve applies defaults, overlays the optional product override and checks
// the bounds.
func Resolve(cfg domain.WeightConfig, override *domain.WeightConfig) (domain.WeightConfig, error) {
	resolved := cfg.WithDefaults()
	if override != nil {
		resolved = resolved.Merge(*override)
	}
	if err := Validate(resolved); err != nil {
		return domain.WeightConfig{}, err
	}
	return resolved, nil
}

func Validate(cfg domain.WeightConfig) error {
	if !cfg.Min.IsPositive() {
		return domain.NewConfigurationError("weight.min", "must be positive, got %s", cfg.Min)
	}
	if cfg.Min.GreaterThan(cfg.Max) {
		return domain.NewConfigurationError("weight.max", "min %s exceeds max %s", cfg.Min, cfg.Max)
	}
	if !cfg.Increment.IsPositive() {
		return domain.NewConfigurationError("weight.increment", "must be positive, got %s", cfg.Increment)
	}
	return nil
}

// Options enumerates the weight choices for a product in ascending order.
// An explicit allowed-value set wins over the min/increment progression.
func Options(cfg domain.WeightConfig, override *domain.WeightConfig) ([]domain.WeightOption, error) {
	resolved, err := Resolve(cfg, override)
	if err != nil {
		return nil, err
	}

	var values []decimal.Decimal
	if len(resolved.AllowedValues) > 0 {
		values = allowedWithin(resolved)
		if len(values) == 0 {
			return nil, domain.NewConfigurationError("weight.allowedValues", "no value lies within [%s, %s]", resolved.Min, resolved.Max)
		}
	} else {
		values, err = progression(resolved)
		if err != nil {
			return nil, err
		}
	}

	out := make([]domain.WeightOption, 0, len(values))
	for _, v := range values {
		out = append(out, domain.WeightOption{Value: v, Label: Label(v, resolved.Unit)})
	}
	return out, nil
}

func allowedWithin(cfg domain.WeightConfig) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(cfg.AllowedValues))
	for _, v := range cfg.AllowedValues {
		if v.LessThan(cfg.Min) || v.GreaterThan(cfg.Max) {
			continue
		}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })

	deduped := values[:0]
	for i, v := range values {
		if i > 0 && v.Equal(deduped[len(deduped)-1]) {
			continue
		}
		deduped = append(deduped, v)
	}
	return deduped
}

func progression(cfg domain.WeightConfig) ([]decimal.Decimal, error) {
	limit := cfg.Max.Add(Epsilon)
	var values []decimal.Decimal
	for v := cfg.Min; v.LessThanOrEqual(limit); v = v.Add(cfg.Increment) {
		if len(values) == maxOptions {
			return nil, domain.NewConfigurationError("weight.increment", "increment %s yields more than %d options", cfg.Increment, maxOptions)
		}
		if v.GreaterThan(cfg.Max) {
			v = cfg.Max
		}
		values = append(values, v)
	}
	return values, nil
}

// Clamp forces an arbitrary requested weight into [min, max].
func Clamp(cfg domain.WeightConfig, w decimal.Decimal) decimal.Decimal {
	if w.LessThan(cfg.Min) {
		return cfg.Min
	}
	if w.GreaterThan(cfg.Max) {
		return cfg.Max
	}
	return w
}

// FormatValue renders integers without a decimal point and everything else in
// its natural decimal form.
func FormatValue(v decimal.Decimal) string {
	return v.String()
}

func Label(v decimal.Decimal, unit string) string {
	if unit == "" {
		unit = domain.DefaultWeightUnit
	}
	return FormatValue(v) + " " + unit
}

// Contains reports whether w matches one of options within Epsilon.
func Contains(options []domain.WeightOption, w decimal.Decimal) bool {
	for _, o := range options {
		if o.Value.Sub(w).Abs().LessThanOrEqual(Epsilon) {
			return true
		}
	}
	return false
}
