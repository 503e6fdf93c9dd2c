package main

import (
	"fmt"
	"os"

	"github.com/doctor-kat/ynab-assist/cmd/assist"
	"github.com/doctor-kat/ynab-assist/cmd/budgets"
	"github.com/doctor-kat/ynab-assist/cmd/export"
	"github.com/doctor-kat/ynab-assist/cmd/root"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(assist.Cmd)
	root.Cmd.AddCommand(budgets.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
