// Package cmd implements the fsh command line application to run a phone shop.
package cmd

import (
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range Groups {
		for _, cmd := range g.Commands {
			c.Register(cmd, g.Name)
		}
	}
}

// Group is a named set of subcommands.
type Group struct {
	Name     string
	Commands []subcommands.Command
}

// Groups lists every subcommand of fsh.
var Groups = []Group{
	{"stock", []subcommands.Command{&addDeviceCmd{}, &deleteDeviceCmd{}, &inventoryCmd{}, &addModelCmd{}, &removeModelCmd{}}},
	{"sales", []subcommands.Command{&sellCmd{}, &returnCmd{}, &payCmd{}, &addDebtorCmd{}, &salesCmd{}, &debtorsCmd{}}},
	{"reports", []subcommands.Command{&dashboardCmd{}, &analyticsCmd{}, &adviseCmd{}}},
	{"settings", []subcommands.Command{&cashCmd{}, &ratesCmd{}, &settingsCmd{}}},
	{"sync", []subcommands.Command{&pushCmd{}, &pullCmd{}}},
	{"server", []subcommands.Command{&serveCmd{}}},
	{"help", []subcommands.Command{&topicCmd{}}},
}
