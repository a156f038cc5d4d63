// Package importer defines the contract every statement importer fulfils
// towards the ingestion framework.
package importer

import (
	"github.com/sirupsen/logrus"

	"github.com/ghamet/beancount-importers/internal/ledger"
)

// Importer converts one vendor's statement export into ledger entries.
//
// Identify reports whether the file matches the importer's format. It never
// fails on a format mismatch; only I/O errors are returned. Extract parses
// the whole file and is atomic: it returns either all entries or an error,
// never a partial result. Entries come back in file order, which for bank
// statements is newest first; callers sort if they need a different order.
type Importer interface {
	// Name identifies the importer in logs and in the registry.
	Name() string

	// Account returns the ledger account this importer instance targets.
	Account() string

	// Identify reports whether the file at path is in this importer's format.
	Identify(path string) (bool, error)

	// Extract parses the file at path into ledger entries.
	Extract(path string) ([]ledger.Entry, error)

	// SetLogger configures the importer's logger.
	SetLogger(logger *logrus.Logger)
}
