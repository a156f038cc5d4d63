// Package factory builds configured importer instances by type tag.
package factory

import (
	"fmt"

	"github.com/ghamet/beancount-importers/internal/classifier"
	"github.com/ghamet/beancount-importers/internal/comdirect"
	"github.com/ghamet/beancount-importers/internal/importer"
	"github.com/ghamet/beancount-importers/internal/paypal"
)

// ImporterType names one of the available importers.
type ImporterType string

const (
	ComdirectChecking  ImporterType = "comdirect-checking"
	ComdirectSavings   ImporterType = "comdirect-savings"
	ComdirectCredit    ImporterType = "comdirect-credit"
	ComdirectBrokerage ImporterType = "comdirect-brokerage"
	Paypal             ImporterType = "paypal"
)

var comdirectTypes = map[ImporterType]comdirect.AccountType{
	ComdirectChecking:  comdirect.Checking,
	ComdirectSavings:   comdirect.Savings,
	ComdirectCredit:    comdirect.Credit,
	ComdirectBrokerage: comdirect.Brokerage,
}

// GetImporter returns a new importer of the given type, targeting the given
// ledger account. The classifier may be nil; importers that don't use one
// ignore it.
func GetImporter(importerType ImporterType, account string, c *classifier.Classifier) (importer.Importer, error) {
	if accountType, ok := comdirectTypes[importerType]; ok {
		return comdirect.New(accountType, account)
	}
	switch importerType {
	case Paypal:
		return paypal.New(account, c), nil
	default:
		return nil, fmt.Errorf("unknown importer type: %s", importerType)
	}
}
