// Package currency renders money amounts for display using the store locale.
package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/engine"
)

type Formatter struct {
	label   string
	printer *message.Printer
}

// NewFormatter parses locale as a BCP 47 tag; an unparseable or empty tag
// falls back to Arabic.
func NewFormatter(locale, label string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.Arabic
	}
	if label == "" {
		label = domain.DefaultCurrencyLabel
	}
	return &Formatter{label: label, printer: message.NewPrinter(tag)}
}

// Format prints amount with two decimals, locale grouping and the currency label.
func (f *Formatter) Format(amount decimal.Decimal) string {
	v := amount.Round(engine.CurrencyPlaces).InexactFloat64()
	return f.printer.Sprint(number.Decimal(v, number.Scale(engine.CurrencyPlaces))) + " " + f.label
}

func (f *Formatter) Label() string { return f.label }
