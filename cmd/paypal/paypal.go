// Package paypal handles the PayPal activity import command
package paypal

import (
	"github.com/spf13/cobra"

	"github.com/ghamet/beancount-importers/cmd/common"
	"github.com/ghamet/beancount-importers/cmd/root"
	"github.com/ghamet/beancount-importers/internal/paypal"
)

// Cmd represents the paypal command
var Cmd = &cobra.Command{
	Use:   "paypal",
	Short: "Import a PayPal activity CSV export",
	Long: `Import a German PayPal activity CSV export. With a classifier
rules file each transaction gets its counter posting appended from the
payee mapping; without one the entries are emitted single-posting.`,
	Run: paypalFunc,
}

func paypalFunc(cmd *cobra.Command, args []string) {
	c, err := root.LoadClassifier()
	if err != nil {
		root.Log.Fatalf("Error loading classifier rules: %v", err)
	}

	imp := paypal.New(root.AccountFor("paypal"), c)
	if err := common.ProcessFile(imp, root.SharedFlags.Input, root.SharedFlags.Output, root.Log); err != nil {
		root.Log.Fatalf("Error processing PayPal export: %v", err)
	}
	root.Log.Info("PayPal import completed successfully!")
}
