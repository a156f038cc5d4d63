package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Transaction is a dated financial event with one or more postings.
//
// Importers deliberately emit incomplete double-entry data: cash rows carry
// a single posting and the counter posting is appended later by a
// classifier. Callers must not assume transactions balance.
type Transaction struct {
	Meta      Metadata
	TxnDate   time.Time
	Flag      string
	Payee     string
	Narration string
	Postings  []Posting
}

// Date implements Entry.
func (t *Transaction) Date() time.Time {
	return t.TxnDate
}

// Render implements Entry. Output follows the beancount transaction syntax:
//
//	2024-03-01 * "Jane Doe" "Miete"
//	  Assets:EU:Comdirect:Checking  -650.00 EUR
func (t *Transaction) Render() string {
	var b strings.Builder

	b.WriteString(t.TxnDate.Format("2006-01-02"))
	b.WriteString(" ")
	b.WriteString(t.Flag)
	if t.Payee != "" {
		fmt.Fprintf(&b, " %q", t.Payee)
	}
	fmt.Fprintf(&b, " %q", t.Narration)
	b.WriteString(t.Meta.render())

	for _, p := range t.Postings {
		b.WriteString("\n  ")
		b.WriteString(p.Account)
		if p.Amount != nil {
			b.WriteString("  ")
			b.WriteString(p.Amount.String())
		}
		if p.Cost != nil {
			b.WriteString(" {")
			b.WriteString(p.Cost.String())
			b.WriteString("}")
		}
	}

	return b.String()
}

// Balance asserts the recorded account balance at the start of a given day.
type Balance struct {
	Meta       Metadata
	AssertDate time.Time
	Account    string
	Amount     Amount
}

// Date implements Entry.
func (b *Balance) Date() time.Time {
	return b.AssertDate
}

// Render implements Entry.
func (b *Balance) Render() string {
	return fmt.Sprintf("%s balance %s  %s%s",
		b.AssertDate.Format("2006-01-02"), b.Account, b.Amount.String(),
		b.Meta.render())
}

// RenderAll renders entries in order, separated by blank lines, with a
// trailing newline. This is the textual ledger handed to downstream tooling.
func RenderAll(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Render())
		b.WriteString("\n")
	}
	return b.String()
}
