// Package classifier maps counterparty names to ledger accounts. It is the
// injected classification collaborator the importers hand their
// single-posting transactions to: looking up a payee yields the account for
// the counter posting.
package classifier

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ghamet/beancount-importers/internal/ledger"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Fallback accounts used when no rule matches.
const (
	DefaultUncategorizedExpenses = "Expenses:FIXME"
	DefaultUncategorizedIncome   = "Income:Uncategorized"
)

// Rules is the on-disk rule set: exact payee matches plus per-transaction-id
// overrides for recurring entries the payee name alone cannot distinguish.
type Rules struct {
	Payees                map[string]string `yaml:"payees"`
	TransactionIDs        map[string]string `yaml:"transaction_ids"`
	UncategorizedExpenses string            `yaml:"uncategorized_expenses"`
	UncategorizedIncome   string            `yaml:"uncategorized_income"`
}

// Classifier resolves counterparties to accounts using a loaded rule set.
type Classifier struct {
	rules Rules
}

// New creates a classifier from an in-memory rule set, filling in the
// default fallback accounts where the rule set leaves them empty.
func New(rules Rules) *Classifier {
	if rules.UncategorizedExpenses == "" {
		rules.UncategorizedExpenses = DefaultUncategorizedExpenses
	}
	if rules.UncategorizedIncome == "" {
		rules.UncategorizedIncome = DefaultUncategorizedIncome
	}
	return &Classifier{rules: rules}
}

// Load reads a YAML rules file and builds a classifier from it.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading classifier rules: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("error parsing classifier rules: %w", err)
	}

	log.WithFields(logrus.Fields{
		"file":   path,
		"payees": len(rules.Payees),
	}).Info("Loaded classifier rules")
	return New(rules), nil
}

// Classify returns the counter account for a transaction with the given
// payee, transaction id and amount sign. Transaction-id overrides win over
// payee rules; unknown counterparties land on the sign-dependent
// uncategorized account.
func (c *Classifier) Classify(payee, transactionID string, negative bool) string {
	if account, ok := c.rules.TransactionIDs[transactionID]; ok && transactionID != "" {
		return account
	}
	if account, ok := c.lookupPayee(payee); ok {
		return account
	}
	if negative {
		return c.rules.UncategorizedExpenses
	}
	return c.rules.UncategorizedIncome
}

func (c *Classifier) lookupPayee(payee string) (string, bool) {
	if payee == "" {
		return "", false
	}
	if account, ok := c.rules.Payees[payee]; ok {
		return account, true
	}
	// Rule files are maintained by hand; tolerate case drift.
	for name, account := range c.rules.Payees {
		if strings.EqualFold(name, payee) {
			return account, true
		}
	}
	return "", false
}

// Balance appends the counter posting to a single-posting transaction,
// turning the importer's intentionally incomplete entry into balanced
// double-entry data. Transactions that already carry more than one posting
// are returned unchanged.
func (c *Classifier) Balance(txn *ledger.Transaction, transactionID string) *ledger.Transaction {
	if len(txn.Postings) != 1 || txn.Postings[0].Amount == nil {
		return txn
	}
	amount := *txn.Postings[0].Amount
	counter := amount.Neg()
	account := c.Classify(txn.Payee, transactionID, amount.Number.IsNegative())
	txn.Postings = append(txn.Postings, ledger.Posting{Account: account, Amount: &counter})
	return txn
}
