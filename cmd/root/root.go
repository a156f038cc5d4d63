// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ghamet/beancount-importers/internal/classifier"
	"github.com/ghamet/beancount-importers/internal/comdirect"
	"github.com/ghamet/beancount-importers/internal/config"
	"github.com/ghamet/beancount-importers/internal/currencyutils"
	"github.com/ghamet/beancount-importers/internal/paypal"
)

// CommonFlags represents the flags that are shared by the importer commands
type CommonFlags struct {
	Input   string
	Output  string
	Account string
	Rules   string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the loaded application configuration
	Cfg *config.Config

	// SharedFlags holds the flag values shared by the importer commands
	SharedFlags CommonFlags

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "beancount-importers",
		Short: "Convert bank statement exports into beancount ledger entries.",
		Long: `beancount-importers converts bank statement exports (comdirect
multi-section CSV, PayPal activity CSV) into beancount ledger entries:
transactions and balance assertions ready for review by downstream tooling.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Use --help to see available importers")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			Log = config.ConfigureLogging()

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Error loading configuration: %v", err)
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)

			// Propagate the configured logger to all packages
			comdirect.SetLogger(Log)
			paypal.SetLogger(Log)
			classifier.SetLogger(Log)
			currencyutils.SetLogger(Log)
		},
	}
)

// Init registers the persistent flags on the root command.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input statement file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output ledger file (stdout when omitted)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Account, "account", "a", "", "Target ledger account")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Rules, "rules", "", "Classifier rules YAML file")
}

// AccountFor returns the target ledger account for an importer: the
// --account flag when given, otherwise the account configured for the
// importer key under the "accounts" config section.
func AccountFor(importerKey string) string {
	if SharedFlags.Account != "" {
		return SharedFlags.Account
	}
	if Cfg != nil {
		return Cfg.Accounts[importerKey]
	}
	return ""
}

// LoadClassifier loads the classifier rules named on the command line or in
// the configuration. A nil classifier means entries stay unbalanced.
func LoadClassifier() (*classifier.Classifier, error) {
	rulesFile := SharedFlags.Rules
	if rulesFile == "" && Cfg != nil {
		rulesFile = Cfg.Classifier.RulesFile
	}
	if rulesFile == "" {
		return nil, nil
	}
	return classifier.Load(rulesFile)
}
