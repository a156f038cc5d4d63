// Package comdirect converts comdirect CSV statement exports into ledger
// entries. An export interleaves the sections of every account the customer
// holds in one file; each Importer instance targets exactly one account type
// and reads only that account's section.
package comdirect

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ghamet/beancount-importers/internal/currencyutils"
	"github.com/ghamet/beancount-importers/internal/importer"
	"github.com/ghamet/beancount-importers/internal/importererror"
	"github.com/ghamet/beancount-importers/internal/ledger"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Exports are written in the bank's legacy single-byte encoding, not UTF-8.
var statementEncoding = charmap.ISO8859_1

const (
	currency   = "EUR"
	dateLayout = "02.01.2006"

	// Sentinel values in the date column.
	sentinelNoTransactions = "Keine Umsätze vorhanden."
	sentinelPending        = "offen"
	sentinelOldBalance     = "Alter Kontostand"

	// Placeholder accounts for the brokerage legs a downstream classifier
	// fills in.
	defaultCashAccount = "FIXME:cash"
	defaultFeesAccount = "FIXME:fees"
)

// inRowBalancePattern is the narrower balance shape used by the
// "Alter Kontostand" rows, matched against the row's second column.
var inRowBalancePattern = regexp.MustCompile(`^(?P<raw_amount>[0-9,.]+) EUR`)

// Importer reads one account type's section from a comdirect export.
// It implements the importer.Importer contract.
type Importer struct {
	structure   AccountStructure
	account     string
	cashAccount string
	feesAccount string
}

var _ importer.Importer = (*Importer)(nil)

// New creates an importer for the given account type, targeting the given
// ledger account. It fails if the account type is not in the format catalog.
func New(accountType AccountType, account string) (*Importer, error) {
	structure, err := LookupStructure(accountType)
	if err != nil {
		return nil, err
	}
	return &Importer{
		structure:   structure,
		account:     account,
		cashAccount: defaultCashAccount,
		feesAccount: defaultFeesAccount,
	}, nil
}

// SetBrokerageAccounts overrides the placeholder accounts used for the cash
// and fee legs of security trades.
func (i *Importer) SetBrokerageAccounts(cash, fees string) {
	if cash != "" {
		i.cashAccount = cash
	}
	if fees != "" {
		i.feesAccount = fees
	}
}

// Name implements importer.Importer.
func (i *Importer) Name() string {
	return "comdirect-" + string(i.structure.Type)
}

// Account implements importer.Importer.
func (i *Importer) Account() string {
	return i.account
}

// SetLogger implements importer.Importer by delegating to the package-level
// function.
func (i *Importer) SetLogger(logger *logrus.Logger) {
	SetLogger(logger)
}

// Identify reports whether the file contains this importer's section. It
// runs the preamble scanner and nothing else; a format mismatch is a false
// result, never an error. Only I/O failures are returned.
func (i *Importer) Identify(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("error opening statement file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("Failed to close statement file")
		}
	}()

	r := bufio.NewReader(transform.NewReader(f, statementEncoding.NewDecoder()))
	if _, err := scanPreamble(r, i.structure, path); err != nil {
		var formatErr *importererror.InvalidFormatError
		if errors.As(err, &formatErr) {
			log.WithFields(logrus.Fields{
				"file":   path,
				"reason": formatErr.Msg,
			}).Debug("File does not match comdirect section")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Extract parses the importer's section into ledger entries, in file order
// (newest row first). Extraction is atomic: any malformed amount or date
// aborts the whole call so that no financial data is silently dropped.
func (i *Importer) Extract(path string) ([]ledger.Entry, error) {
	log.WithFields(logrus.Fields{
		"file":    path,
		"section": i.structure.Label,
	}).Info("Extracting comdirect statement")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening statement file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("Failed to close statement file")
		}
	}()

	r := bufio.NewReader(transform.NewReader(f, statementEncoding.NewDecoder()))
	res, err := scanPreamble(r, i.structure, path)
	if err != nil {
		return nil, err
	}

	entries, err := i.extractRows(r, res, path)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"file":  path,
		"count": len(entries),
	}).Info("Successfully extracted comdirect statement")
	return entries, nil
}

// extractRows consumes the tabular rows following the preamble until end of
// input or the next section's start marker.
func (i *Importer) extractRows(r *bufio.Reader, pre preambleResult, path string) ([]ledger.Entry, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var entries []ledger.Entry
	var lastDate time.Time
	lineNo := pre.linesRead + 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading statement row: %w", err)
		}

		row := rowByField(i.structure.Fields, record)
		rawDate := row[colBookingDate]

		if strings.HasPrefix(rawDate, sectionMarkerPrefix) {
			// The next account's section starts here.
			break
		}
		if rawDate == sentinelNoTransactions || rawDate == sentinelPending {
			lineNo++
			continue
		}
		if rawDate == sentinelOldBalance {
			if entry := i.oldBalanceEntry(row, lastDate, path, lineNo); entry != nil {
				entries = append(entries, entry)
			}
			lineNo++
			continue
		}

		date, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, &importererror.DataExtractionError{
				FilePath: path, Field: colBookingDate, Value: rawDate, Err: err,
			}
		}

		// The first dated row is the newest one; the closing balance from
		// the preamble holds at the start of the following day.
		if lastDate.IsZero() && pre.rawBalance != "" {
			amount, err := currencyutils.ParseGermanDecimal(pre.rawBalance)
			if err != nil {
				return nil, err
			}
			entries = append(entries, &ledger.Balance{
				Meta:       ledger.Metadata{Filename: path, Line: lineNo},
				AssertDate: date.AddDate(0, 0, 1),
				Account:    i.account,
				Amount:     ledger.NewAmount(amount, currency),
			})
		}
		lastDate = date

		amount, err := currencyutils.ParseGermanDecimal(row[colAmount])
		if err != nil {
			return nil, err
		}

		var txn *ledger.Transaction
		if i.structure.Type == Brokerage {
			txn, err = i.tradeTransaction(row, date, amount, path, lineNo)
			if err != nil {
				return nil, err
			}
		} else {
			txn = i.cashTransaction(row, date, amount, path, lineNo)
		}
		entries = append(entries, txn)
		lineNo++
	}

	return entries, nil
}

// oldBalanceEntry turns an "Alter Kontostand" row into a balance assertion
// dated at the previously seen transaction date. A balance cell that does
// not match the in-row pattern is skipped without failing the extraction;
// the same goes for a balance row arriving before any dated row.
func (i *Importer) oldBalanceEntry(row map[string]string, lastDate time.Time, path string, lineNo int) ledger.Entry {
	raw := row[i.structure.Fields[1]]
	m := inRowBalancePattern.FindStringSubmatch(raw)
	if m == nil || lastDate.IsZero() {
		log.WithFields(logrus.Fields{
			"file": path,
			"line": lineNo,
			"cell": raw,
		}).Warn("Skipping unparseable previous-balance row")
		return nil
	}
	amount, err := currencyutils.ParseGermanDecimal(m[1])
	if err != nil {
		log.WithError(err).WithField("line", lineNo).Warn("Skipping unparseable previous-balance row")
		return nil
	}
	return &ledger.Balance{
		Meta:       ledger.Metadata{Filename: path, Line: lineNo},
		AssertDate: lastDate,
		Account:    i.account,
		Amount:     ledger.NewAmount(amount, currency),
	}
}

// cashTransaction builds the single-posting entry for checking, savings and
// credit card rows. The counter posting is intentionally left for a
// downstream classifier; the entries do not balance on their own.
func (i *Importer) cashTransaction(row map[string]string, date time.Time, amount decimal.Decimal, path string, lineNo int) *ledger.Transaction {
	parsed := parseNarration(row[colNarration])

	payee := parsed[keyRecipient]
	if payee == "" {
		payee = parsed[keyOriginator]
	}
	description := parsed[keyText]
	if description == "" {
		description = row[colNarration]
	}

	postingAmount := ledger.NewAmount(amount, currency)
	return &ledger.Transaction{
		Meta:      ledger.Metadata{Filename: path, Line: lineNo},
		TxnDate:   date,
		Flag:      ledger.FlagCleared,
		Payee:     payee,
		Narration: description,
		Postings: []ledger.Posting{
			{Account: i.account, Amount: &postingAmount},
		},
	}
}

// tradeTransaction builds the three-posting entry for a security trade: the
// cash leg, an unallocated fee leg without an amount, and the instrument leg
// holding the unit count at its per-unit execution price.
func (i *Importer) tradeTransaction(row map[string]string, date time.Time, amount decimal.Decimal, path string, lineNo int) (*ledger.Transaction, error) {
	units, err := decimal.NewFromString(row[colUnits])
	if err != nil {
		return nil, &importererror.DataExtractionError{
			FilePath: path, Field: colUnits, Value: row[colUnits], Err: err,
		}
	}
	price, err := currencyutils.ParseGermanDecimal(row[colPrice])
	if err != nil {
		return nil, err
	}

	cashAmount := ledger.NewAmount(amount.Neg(), currency)
	instrumentAmount := ledger.NewAmount(units, row[colWKN])
	perUnitCost := ledger.Cost{Number: price, Currency: row[colCurrency]}

	return &ledger.Transaction{
		Meta:      ledger.Metadata{Filename: path, Line: lineNo},
		TxnDate:   date,
		Flag:      ledger.FlagCleared,
		Narration: row[colName],
		Postings: []ledger.Posting{
			{Account: i.cashAccount, Amount: &cashAmount},
			{Account: i.feesAccount},
			{Account: i.account, Amount: &instrumentAmount, Cost: &perUnitCost},
		},
	}, nil
}

// rowByField maps a CSV record's cells to the section's column names.
// Records shorter than the layout leave the missing columns empty, which is
// how sentinel rows with fewer cells come through.
func rowByField(fields []string, record []string) map[string]string {
	row := make(map[string]string, len(fields))
	for idx, field := range fields {
		if field == "" {
			continue
		}
		if idx < len(record) {
			row[field] = record[idx]
		} else {
			row[field] = ""
		}
	}
	return row
}
