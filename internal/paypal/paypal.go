// Package paypal converts German PayPal activity CSV exports into ledger
// entries. Unlike the comdirect exports this is an honest single-table CSV,
// so rows map straight onto a struct via gocsv.
package paypal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/ghamet/beancount-importers/internal/classifier"
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

const dateLayout = "02.01.2006"

// csvRow is one line of the PayPal activity export. Amounts use the German
// decimal convention.
type csvRow struct {
	Date          string `csv:"Datum"`
	Name          string `csv:"Name"`
	Gross         string `csv:"Brutto"`
	Currency      string `csv:"Währung"`
	Description   string `csv:"Artikelbezeichnung"`
	TransactionID string `csv:"Transaktionscode"`
	Balance       string `csv:"Guthaben"`
}

var requiredColumns = []string{"Datum", "Name", "Brutto", "Währung", "Transaktionscode"}

// Importer reads PayPal activity exports. When a classifier is set, each
// transaction gets its counter posting appended from the payee mapping;
// without one the entries keep the single-posting shape of the bank
// importers.
type Importer struct {
	account    string
	classifier *classifier.Classifier
}

var _ importer.Importer = (*Importer)(nil)

// New creates a PayPal importer targeting the given ledger account.
func New(account string, c *classifier.Classifier) *Importer {
	return &Importer{account: account, classifier: c}
}

// Name implements importer.Importer.
func (i *Importer) Name() string {
	return "paypal"
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

// Identify reports whether the file carries the PayPal export header.
func (i *Importer) Identify(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("error opening file for validation: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		// A file that is not CSV at all is a mismatch, not a failure.
		log.WithError(err).WithField("file", path).Debug("File is not a readable CSV")
		return false, nil
	}

	headerSet := make(map[string]bool, len(header))
	for _, col := range header {
		headerSet[col] = true
	}
	for _, col := range requiredColumns {
		if !headerSet[col] {
			return false, nil
		}
	}
	return true, nil
}

// Extract parses the file into ledger entries, newest row first. The newest
// row's running balance becomes a balance assertion for the following day,
// matching the bank importers.
func (i *Importer) Extract(path string) ([]ledger.Entry, error) {
	log.WithField("file", path).Info("Extracting PayPal activity export")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PayPal CSV: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("error parsing PayPal CSV: %w", err)
	}

	var entries []ledger.Entry
	for idx, row := range rows {
		if row.Date == "" || row.Gross == "" {
			continue
		}

		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, &importererror.DataExtractionError{
				FilePath: path, Field: "Datum", Value: row.Date, Err: err,
			}
		}
		amount, err := currencyutils.ParseGermanDecimal(row.Gross)
		if err != nil {
			return nil, err
		}

		currency := row.Currency
		if currency == "" {
			currency = "EUR"
		}

		// Data rows start on line 2, after the header.
		meta := ledger.Metadata{Filename: path, Line: idx + 2}

		if len(entries) == 0 && row.Balance != "" {
			balance, err := currencyutils.ParseGermanDecimal(row.Balance)
			if err != nil {
				return nil, err
			}
			entries = append(entries, &ledger.Balance{
				Meta:       meta,
				AssertDate: date.AddDate(0, 0, 1),
				Account:    i.account,
				Amount:     ledger.NewAmount(balance, currency),
			})
		}

		postingAmount := ledger.NewAmount(amount, currency)
		txn := &ledger.Transaction{
			Meta:      meta,
			TxnDate:   date,
			Flag:      ledger.FlagCleared,
			Payee:     row.Name,
			Narration: row.Description,
			Postings: []ledger.Posting{
				{Account: i.account, Amount: &postingAmount},
			},
		}
		if i.classifier != nil {
			txn = i.classifier.Balance(txn, row.TransactionID)
		}
		entries = append(entries, txn)
	}

	log.WithFields(logrus.Fields{
		"file":  path,
		"count": len(entries),
	}).Info("Successfully extracted PayPal activity export")
	return entries, nil
}
