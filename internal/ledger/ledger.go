// Package ledger defines the in-memory entry model produced by the
// importers: transactions with their postings and balance assertions. The
// shapes follow beancount directives so that rendered output can be fed
// straight into a ledger file.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FlagCleared marks a transaction as reviewed. Importers emit every
// transaction cleared; rows still marked open in the source are skipped
// before they reach the ledger.
const FlagCleared = "*"

// Entry is a single ledger directive. The concrete types are Transaction
// and Balance.
type Entry interface {
	// Date returns the directive date.
	Date() time.Time
	// Render returns the directive as beancount text, without a trailing
	// newline.
	Render() string
}

// Amount is a number together with its commodity. The commodity is a
// currency code for cash legs or a security identifier for instrument legs.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// NewAmount builds an Amount from a decimal number and a commodity code.
func NewAmount(number decimal.Decimal, currency string) Amount {
	return Amount{Number: number, Currency: currency}
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}

// Cost is a per-unit acquisition cost attached to an instrument posting.
type Cost struct {
	Number   decimal.Decimal
	Currency string
}

func (c Cost) String() string {
	return c.Number.String() + " " + c.Currency
}

// Posting is one leg of a transaction. Amount is nil for legs whose value is
// to be inferred downstream, such as an unallocated fee leg.
type Posting struct {
	Account string
	Amount  *Amount
	Cost    *Cost
}

// Metadata records where in the source file an entry came from. When set it
// is rendered as a "source" metadata line on the directive, so reviewers can
// jump from a ledger entry back to the statement row it was extracted from.
type Metadata struct {
	Filename string
	Line     int
}

// render returns the metadata line for a directive, or the empty string when
// no source location is recorded.
func (m Metadata) render() string {
	if m.Filename == "" {
		return ""
	}
	return fmt.Sprintf("\n  source: %q", fmt.Sprintf("%s:%d", m.Filename, m.Line))
}
