package comdirect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ghamet/beancount-importers/internal/importererror"
)

// AccountType tags one of the account sections a comdirect CSV export can
// contain. A single export file carries the sections of every account the
// customer holds, back to back.
type AccountType string

const (
	Checking  AccountType = "checking"
	Savings   AccountType = "savings"
	Credit    AccountType = "credit"
	Brokerage AccountType = "brokerage"
)

// Column names used by the section layouts.
const (
	colBookingDate = "Buchungstag"
	colValueDate   = "Wertstellung (Valuta)"
	colTradeDate   = "Geschäftstag"
	colActivity    = "Vorgang"
	colReference   = "Referenz"
	colNarration   = "Buchungstext"
	colAmount      = "Umsatz in EUR"
	colSettleDate  = "Umsatztag"
	colUnits       = "Stück / Nom."
	colName        = "Bezeichnung"
	colWKN         = "WKN"
	colCurrency    = "Währung"
	colPrice       = "Ausführungskurs"
)

// AccountStructure describes one account type's section: the label in the
// section marker, whether the preamble carries a running-balance line, and
// the column layout of the rows. The trailing empty field mirrors the
// trailing semicolon every row ends with.
type AccountStructure struct {
	Type       AccountType
	Label      string
	HasBalance bool
	Fields     []string
}

var structures = map[AccountType]AccountStructure{
	Checking: {
		Type:       Checking,
		Label:      "Girokonto",
		HasBalance: true,
		Fields: []string{
			colBookingDate,
			colValueDate,
			colActivity,
			colNarration,
			colAmount,
			"",
		},
	},
	Savings: {
		Type:       Savings,
		Label:      "Tagesgeld PLUS-Konto",
		HasBalance: true,
		Fields: []string{
			colBookingDate,
			colValueDate,
			colActivity,
			colNarration,
			colAmount,
			"",
		},
	},
	Credit: {
		Type:       Credit,
		Label:      "Visa-Karte (Kreditkarte)",
		HasBalance: true,
		Fields: []string{
			colBookingDate,
			colSettleDate,
			colActivity,
			colReference,
			colNarration,
			colAmount,
			"",
		},
	},
	Brokerage: {
		Type:       Brokerage,
		Label:      "Depot",
		HasBalance: false,
		Fields: []string{
			colBookingDate,
			colTradeDate,
			colUnits,
			colName,
			colWKN,
			colCurrency,
			colPrice,
			colAmount,
			"",
		},
	},
}

// LookupStructure returns the section layout registered for the given
// account type.
func LookupStructure(accountType AccountType) (AccountStructure, error) {
	structure, ok := structures[accountType]
	if !ok {
		return AccountStructure{}, &importererror.UnknownFormatError{TypeTag: string(accountType)}
	}
	return structure, nil
}

// HeaderRow builds the exact table header line for a field layout: each
// non-empty field quoted, fields joined by ';', a trailing empty field
// producing the bare trailing separator.
func HeaderRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		if field != "" {
			quoted[i] = fmt.Sprintf("%q", field)
		}
	}
	return strings.Join(quoted, ";")
}

// sectionMarkerPrefix starts every section marker line and, when it shows up
// in the date column of a row, signals that the next account's section
// begins there.
const sectionMarkerPrefix = "Umsätze"

// sectionPattern matches a section's start marker: the section label plus
// either an explicit date range or a "last N days" period.
func sectionPattern(label string) *regexp.Regexp {
	datePattern := `\d{2}\.\d{2}\.\d{4}`
	rangePattern := `\d+ Tage`
	return regexp.MustCompile(fmt.Sprintf(
		`^"%s %s";"Zeitraum: ((%s - %s)|(%s))";$`,
		sectionMarkerPrefix, regexp.QuoteMeta(label), datePattern, datePattern, rangePattern,
	))
}
