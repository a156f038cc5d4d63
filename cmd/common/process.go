// Package common holds the processing pipeline shared by the importer
// commands.
package common

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ghamet/beancount-importers/internal/importer"
	"github.com/ghamet/beancount-importers/internal/ledger"
)

// ProcessFile runs one importer over one input file: identify, extract,
// render. The rendered ledger text goes to outputFile, or to stdout when
// outputFile is empty.
func ProcessFile(imp importer.Importer, inputFile, outputFile string, log *logrus.Logger) error {
	log.WithFields(logrus.Fields{
		"importer": imp.Name(),
		"input":    inputFile,
	}).Info("Processing statement file")

	ok, err := imp.Identify(inputFile)
	if err != nil {
		return fmt.Errorf("error identifying %s: %w", inputFile, err)
	}
	if !ok {
		return fmt.Errorf("%s: format not recognized by importer %s", inputFile, imp.Name())
	}

	entries, err := imp.Extract(inputFile)
	if err != nil {
		return fmt.Errorf("error extracting %s: %w", inputFile, err)
	}

	rendered := ledger.RenderAll(entries)
	if outputFile == "" {
		fmt.Print(rendered)
	} else {
		if err := os.WriteFile(outputFile, []byte(rendered), 0o600); err != nil {
			return fmt.Errorf("error writing ledger file: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"importer": imp.Name(),
		"count":    len(entries),
	}).Info("Processing completed")
	return nil
}
