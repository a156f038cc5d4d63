// Package comdirect handles the comdirect statement import command
package comdirect

import (
	"github.com/spf13/cobra"

	"github.com/ghamet/beancount-importers/cmd/common"
	"github.com/ghamet/beancount-importers/cmd/root"
	"github.com/ghamet/beancount-importers/internal/comdirect"
)

var accountType string

// Cmd represents the comdirect command
var Cmd = &cobra.Command{
	Use:   "comdirect",
	Short: "Import a comdirect CSV statement export",
	Long: `Import one account section from a comdirect CSV statement export.
Exports interleave the sections of all accounts in one file; run the command
once per account type to import them all.`,
	Run: comdirectFunc,
}

func init() {
	Cmd.Flags().StringVarP(&accountType, "type", "t", "checking",
		"Account type to import (checking, savings, credit, brokerage)")
}

func comdirectFunc(cmd *cobra.Command, args []string) {
	account := root.AccountFor("comdirect-" + accountType)
	imp, err := comdirect.New(comdirect.AccountType(accountType), account)
	if err != nil {
		root.Log.Fatalf("Error creating comdirect importer: %v", err)
	}
	if root.Cfg != nil {
		imp.SetBrokerageAccounts(root.Cfg.Brokerage.CashAccount, root.Cfg.Brokerage.FeesAccount)
	}

	if err := common.ProcessFile(imp, root.SharedFlags.Input, root.SharedFlags.Output, root.Log); err != nil {
		root.Log.Fatalf("Error processing comdirect statement: %v", err)
	}
	root.Log.Info("comdirect import completed successfully!")
}
