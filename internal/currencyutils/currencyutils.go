// Package currencyutils provides amount parsing helpers shared by the
// importers.
package currencyutils

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ghamet/beancount-importers/internal/importererror"
)

var log = logrus.New()

// SetLogger sets a custom logger for this package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// ParseGermanDecimal converts a German-formatted amount string ("1.234,56",
// "-12,00") into a decimal value. German bank exports use '.' as the
// thousands separator and ',' as the decimal point.
//
// It must only be called on raw statement cells. Feeding it an
// already-normalized number with a '.' decimal point would strip the point
// as a thousands separator and shift the value.
func ParseGermanDecimal(raw string) (decimal.Decimal, error) {
	normalized := NormalizeGermanNumber(raw)

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		log.WithField("raw", raw).Debug("Failed to parse German decimal")
		return decimal.Zero, &importererror.MalformedNumberError{Raw: raw, Err: err}
	}
	return d, nil
}

// NormalizeGermanNumber rewrites a German-formatted number string into the
// canonical dot-decimal form without parsing it.
func NormalizeGermanNumber(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '.':
			// thousands separator, dropped
		case ',':
			out = append(out, '.')
		default:
			out = append(out, raw[i])
		}
	}
	return string(out)
}
