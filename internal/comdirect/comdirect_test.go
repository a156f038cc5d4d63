package comdirect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ghamet/beancount-importers/internal/ledger"
)

// writeStatement writes a statement fixture in the bank's ISO-8859-1
// encoding and returns its path.
func writeStatement(t *testing.T, content string) string {
	t.Helper()
	encoded, _, err := transform.String(charmap.ISO8859_1.NewEncoder(), content)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))
	return path
}

const checkingSection = `"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"1.234,56 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
"01.03.2024";"01.03.2024";"Lastschrift";"Empfänger: Jane Doe Buchungstext: Miete";"-650,00";
"28.02.2024";"28.02.2024";"Übertrag / Überweisung";"Auftraggeber: ACME GmbH Buchungstext: Gehalt Februar";"2.500,00";
"Alter Kontostand";"999,99 EUR";
`

const creditSection = `"Umsätze Visa-Karte (Kreditkarte)";"Zeitraum: 30 Tage";
"Neuer Kontostand";"120,00 EUR";

"Buchungstag";"Umsatztag";"Vorgang";"Referenz";"Buchungstext";"Umsatz in EUR";
"02.03.2024";"01.03.2024";"Visa-Umsatz";"12345";"SUPERMARKT BERLIN";"-42,17";
`

const brokerageSection = `"Umsätze Depot";"Zeitraum: 01.01.2024 - 31.03.2024";

"Buchungstag";"Geschäftstag";"Stück / Nom.";"Bezeichnung";"WKN";"Währung";"Ausführungskurs";"Umsatz in EUR";
"15.02.2024";"13.02.2024";"2";"Vanguard FTSE All-World";"A1JX52";"EUR";"113,30";"226,60";
`

func newImporter(t *testing.T, accountType AccountType, account string) *Importer {
	t.Helper()
	imp, err := New(accountType, account)
	require.NoError(t, err)
	return imp
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name        string
		accountType AccountType
		content     string
		want        bool
	}{
		{"checking matches checking section", Checking, checkingSection, true},
		{"credit matches credit section", Credit, creditSection, true},
		{"brokerage matches brokerage section", Brokerage, brokerageSection, true},
		{"checking rejects credit section", Checking, creditSection, false},
		{"checking finds its section after another one", Checking, creditSection + "\n" + checkingSection, true},
		{"empty file", Checking, "", false},
		{"plain CSV without marker", Checking, "\"a\";\"b\";\"c\"\n\"1\";\"2\";\"3\"\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := newImporter(t, tt.accountType, "Assets:EU:Comdirect:Checking")
			path := writeStatement(t, tt.content)

			ok, err := imp.Identify(path)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIdentifyAlteredPreamble(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"altered section label",
			`"Umsätze Girokontoo";"Zeitraum: 30 Tage";
"Neuer Kontostand";"1.234,56 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
`,
		},
		{
			"altered date range",
			`"Umsätze Girokonto";"Zeitraum: gestern";
"Neuer Kontostand";"1.234,56 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
`,
		},
		{
			"missing balance line",
			`"Umsätze Girokonto";"Zeitraum: 30 Tage";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
`,
		},
		{
			"missing blank line",
			`"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"1.234,56 EUR";
"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
`,
		},
		{
			"altered header",
			`"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"1.234,56 EUR";

"Buchungstag";"Valuta";"Vorgang";"Buchungstext";"Umsatz in EUR";
`,
		},
		{
			"truncated before header",
			`"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"1.234,56 EUR";
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
			path := writeStatement(t, tt.content)

			ok, err := imp.Identify(path)
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestIdentifyMissingFile(t *testing.T) {
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")

	ok, err := imp.Identify(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestExtractChecking(t *testing.T) {
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, checkingSection)

	entries, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Closing balance from the preamble, dated one day after the newest row.
	closing, ok := entries[0].(*ledger.Balance)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), closing.AssertDate)
	assert.Equal(t, "Assets:EU:Comdirect:Checking", closing.Account)
	assert.True(t, closing.Amount.Number.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "EUR", closing.Amount.Currency)
	assert.Equal(t, ledger.Metadata{Filename: path, Line: 5}, closing.Meta)

	rent, ok := entries[1].(*ledger.Transaction)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rent.TxnDate)
	assert.Equal(t, "*", rent.Flag)
	assert.Equal(t, "Jane Doe", rent.Payee)
	assert.Equal(t, "Miete", rent.Narration)
	require.Len(t, rent.Postings, 1)
	assert.Equal(t, "Assets:EU:Comdirect:Checking", rent.Postings[0].Account)
	assert.True(t, rent.Postings[0].Amount.Number.Equal(decimal.RequireFromString("-650.00")))
	assert.Equal(t, ledger.Metadata{Filename: path, Line: 5}, rent.Meta)

	salary, ok := entries[2].(*ledger.Transaction)
	require.True(t, ok)
	assert.Equal(t, "ACME GmbH", salary.Payee)
	assert.Equal(t, "Gehalt Februar", salary.Narration)
	require.Len(t, salary.Postings, 1)
	assert.True(t, salary.Postings[0].Amount.Number.Equal(decimal.RequireFromString("2500.00")))
	assert.Equal(t, ledger.Metadata{Filename: path, Line: 6}, salary.Meta)

	// Previous balance row, dated at the last seen transaction date.
	opening, ok := entries[3].(*ledger.Balance)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), opening.AssertDate)
	assert.True(t, opening.Amount.Number.Equal(decimal.RequireFromString("999.99")))
	assert.Equal(t, ledger.Metadata{Filename: path, Line: 7}, opening.Meta)
}

func TestExtractStopsAtNextSection(t *testing.T) {
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, checkingSection+"\n"+creditSection)

	entries, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Nothing from the credit section leaked through.
	for _, e := range entries {
		if txn, ok := e.(*ledger.Transaction); ok {
			assert.NotEqual(t, "SUPERMARKT BERLIN", txn.Narration)
		}
	}
}

func TestExtractSentinelRows(t *testing.T) {
	content := `"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"100,00 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
"offen";"02.03.2024";"Lastschrift";"Empfänger: Jane Doe Buchungstext: offen";"-1,00";
"01.03.2024";"01.03.2024";"Lastschrift";"Empfänger: Jane Doe Buchungstext: Miete";"-650,00";
"Keine Umsätze vorhanden.";
`
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, content)

	entries, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, isBalance := entries[0].(*ledger.Balance)
	assert.True(t, isBalance)
	txn, isTxn := entries[1].(*ledger.Transaction)
	require.True(t, isTxn)
	assert.Equal(t, "Miete", txn.Narration)
}

func TestExtractNoTransactions(t *testing.T) {
	content := `"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"100,00 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
"Keine Umsätze vorhanden.";
`
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, content)

	entries, err := imp.Extract(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractMalformedOldBalanceSkipsQuietly(t *testing.T) {
	// The previous-balance row degrades silently when its cell does not
	// match the balance shape. This is deliberate and load-bearing for
	// real-world exports; the rest of the section still extracts.
	content := `"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"100,00 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
"01.03.2024";"01.03.2024";"Lastschrift";"Empfänger: Jane Doe Buchungstext: Miete";"-650,00";
"Alter Kontostand";"kein Betrag";
`
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, content)

	entries, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	_, isBalance := entries[0].(*ledger.Balance)
	assert.True(t, isBalance)
	_, isTxn := entries[1].(*ledger.Transaction)
	assert.True(t, isTxn)
}

func TestExtractMalformedAmountAborts(t *testing.T) {
	content := `"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"100,00 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
"01.03.2024";"01.03.2024";"Lastschrift";"Empfänger: Jane Doe Buchungstext: Miete";"nicht verfügbar";
`
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, content)

	entries, err := imp.Extract(path)
	assert.Error(t, err)
	assert.Nil(t, entries)
}

func TestExtractMalformedDateAborts(t *testing.T) {
	content := `"Umsätze Girokonto";"Zeitraum: 30 Tage";
"Neuer Kontostand";"100,00 EUR";

"Buchungstag";"Wertstellung (Valuta)";"Vorgang";"Buchungstext";"Umsatz in EUR";
"2024-03-01";"01.03.2024";"Lastschrift";"Empfänger: Jane Doe Buchungstext: Miete";"-650,00";
`
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, content)

	entries, err := imp.Extract(path)
	assert.Error(t, err)
	assert.Nil(t, entries)
}

func TestExtractWithoutPriorIdentifyFails(t *testing.T) {
	imp := newImporter(t, Checking, "Assets:EU:Comdirect:Checking")
	path := writeStatement(t, creditSection)

	entries, err := imp.Extract(path)
	assert.Error(t, err)
	assert.Nil(t, entries)
}

func TestExtractBrokerage(t *testing.T) {
	imp := newImporter(t, Brokerage, "Assets:EU:Comdirect:Stocks")
	path := writeStatement(t, brokerageSection)

	entries, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	txn, ok := entries[0].(*ledger.Transaction)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), txn.TxnDate)
	assert.Equal(t, "Vanguard FTSE All-World", txn.Narration)
	assert.Empty(t, txn.Payee)
	require.Len(t, txn.Postings, 3)

	cash := txn.Postings[0]
	assert.Equal(t, "FIXME:cash", cash.Account)
	require.NotNil(t, cash.Amount)
	assert.True(t, cash.Amount.Number.Equal(decimal.RequireFromString("-226.60")))
	assert.Equal(t, "EUR", cash.Amount.Currency)

	fees := txn.Postings[1]
	assert.Equal(t, "FIXME:fees", fees.Account)
	assert.Nil(t, fees.Amount)

	instrument := txn.Postings[2]
	assert.Equal(t, "Assets:EU:Comdirect:Stocks", instrument.Account)
	require.NotNil(t, instrument.Amount)
	assert.True(t, instrument.Amount.Number.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "A1JX52", instrument.Amount.Currency)
	require.NotNil(t, instrument.Cost)
	assert.True(t, instrument.Cost.Number.Equal(decimal.RequireFromString("113.30")))
	assert.Equal(t, "EUR", instrument.Cost.Currency)

	// Cash leg and instrument leg at cost cancel out in the quote currency.
	instrumentValue := instrument.Amount.Number.Mul(instrument.Cost.Number)
	assert.True(t, cash.Amount.Number.Add(instrumentValue).IsZero())
}

func TestExtractBrokerageCustomAccounts(t *testing.T) {
	imp := newImporter(t, Brokerage, "Assets:EU:Comdirect:Stocks")
	imp.SetBrokerageAccounts("Assets:EU:Comdirect:Settlement", "Expenses:Financial:Fees")
	path := writeStatement(t, brokerageSection)

	entries, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	txn := entries[0].(*ledger.Transaction)
	assert.Equal(t, "Assets:EU:Comdirect:Settlement", txn.Postings[0].Account)
	assert.Equal(t, "Expenses:Financial:Fees", txn.Postings[1].Account)
}

func TestNewUnknownAccountType(t *testing.T) {
	imp, err := New("giro", "Assets:Checking")
	assert.Error(t, err)
	assert.Nil(t, imp)
	assert.Contains(t, err.Error(), "unknown account format")
}
