package main

import (
	"os"

	comdirectcmd "github.com/ghamet/beancount-importers/cmd/comdirect"
	paypalcmd "github.com/ghamet/beancount-importers/cmd/paypal"
	"github.com/ghamet/beancount-importers/cmd/root"
)

func main() {
	root.Init()
	root.Cmd.AddCommand(comdirectcmd.Cmd)
	root.Cmd.AddCommand(paypalcmd.Cmd)

	if err := root.Cmd.Execute(); err != nil {
		root.Log.Error(err)
		os.Exit(1)
	}
}
