package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/flagship"
	"github.com/google/subcommands"
)

type cashCmd struct{}

func (*cashCmd) Name() string     { return "cash" }
func (*cashCmd) Synopsis() string { return "display or set the cash balance" }
func (*cashCmd) Usage() string {
	return `fsh cash [<amount>]

  Without argument, displays the cash balance. With an amount, overwrites it
  to match the money actually in the till.
`
}
func (*cashCmd) SetFlags(f *flag.FlagSet) {}

func (c *cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printCash := func(st flagship.State) { fmt.Printf("Cash balance: %s\n", st.CashBalance) }
	switch f.NArg() {
	case 0:
		_, st, closer, err := loadState(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		closer()
		printCash(st)
		return subcommands.ExitSuccess
	case 1:
		amount, err := flagship.ParseMoney(f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
			return subcommands.ExitUsageError
		}
		return run(ctx, printCash, flagship.SetCash{Amount: amount})
	}
	fmt.Fprintln(os.Stderr, "Error: cash takes at most one amount.")
	return subcommands.ExitUsageError
}

type ratesCmd struct {
	exchange, buy, sell string
	refresh             bool
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "display, set or refresh the exchange rates" }
func (*ratesCmd) Usage() string {
	return `fsh rates [-exchange <rate>] [-buy <rate>] [-sell <rate>] [-refresh]

  Displays the USD exchange, buy and sell rates. Flags overwrite them, and
  -refresh fetches the latest exchange rate (FLAGSHIP_RATES_URL).
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "exchange", "", "Exchange rate")
	f.StringVar(&c.buy, "buy", "", "Buy rate")
	f.StringVar(&c.sell, "sell", "", "Sell rate")
	f.BoolVar(&c.refresh, "refresh", false, "Fetch the latest exchange rate")
}

func parseOptionalRate(s string) (flagship.Rate, error) {
	if s == "" {
		return flagship.Rate{}, nil
	}
	return flagship.ParseRate(s)
}

func (c *ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printRates := func(st flagship.State) {
		fmt.Printf("Exchange: %s  Buy: %s  Sell: %s\n", st.ExchangeRate, st.BuyRate, st.SellRate)
	}
	var cmds []flagship.Command

	if c.exchange != "" || c.buy != "" || c.sell != "" {
		var set flagship.SetRates
		var err error
		for _, r := range []struct {
			name  string
			value string
			rate  *flagship.Rate
		}{{"exchange", c.exchange, &set.Exchange}, {"buy", c.buy, &set.Buy}, {"sell", c.sell, &set.Sell}} {
			if *r.rate, err = parseOptionalRate(r.value); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing %s rate: %v\n", r.name, err)
				return subcommands.ExitUsageError
			}
		}
		cmds = append(cmds, set)
	}

	if c.refresh {
		rate, err := newRates(loadConfig()).LatestRate(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching exchange rate: %v\n", err)
			return subcommands.ExitFailure
		}
		cmds = append(cmds, flagship.UpdateRate{Rate: rate})
	}

	if len(cmds) == 0 {
		_, st, closer, err := loadState(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		closer()
		printRates(st)
		return subcommands.ExitSuccess
	}
	return run(ctx, printRates, cmds...)
}

type settingsCmd struct {
	lang     string
	theme    string
	repo     string
	autosync string
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "display or change the shop preferences" }
func (*settingsCmd) Usage() string {
	return `fsh settings [-lang ru|en] [-theme light|dark] [-repo <owner/name>] [-autosync on|off]

  Displays the preferences and sync settings. Flags change them.
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.lang, "lang", "", "Language of the reports and advice (ru or en)")
	f.StringVar(&c.theme, "theme", "", "Terminal theme (light or dark)")
	f.StringVar(&c.repo, "repo", "", "GitHub repository used for backups (owner/name)")
	f.StringVar(&c.autosync, "autosync", "", "Push after every change while serving (on or off)")
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printSettings := func(st flagship.State) {
		fmt.Printf("Language: %s\nTheme: %s\n", st.Language, st.Theme)
		s := st.SyncSettings
		fmt.Printf("Blob key: %s\nRepository: %s\nLast sync: %s\nAuto sync: %t\n", s.BlobKey, s.RepoName, s.LastSync, s.AutoSync)
	}

	_, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	closer()

	var cmds []flagship.Command
	if c.lang != "" || c.theme != "" {
		cmds = append(cmds, flagship.SetPreferences{Language: flagship.Language(c.lang), Theme: flagship.Theme(c.theme)})
	}
	if c.repo != "" || c.autosync != "" {
		settings := st.SyncSettings
		if c.repo != "" {
			settings.RepoName = c.repo
		}
		switch c.autosync {
		case "":
		case "on":
			settings.AutoSync = true
		case "off":
			settings.AutoSync = false
		default:
			fmt.Fprintf(os.Stderr, "Error: -autosync must be on or off, got %q\n", c.autosync)
			return subcommands.ExitUsageError
		}
		cmds = append(cmds, flagship.ConfigureSync{Settings: settings})
	}

	if len(cmds) == 0 {
		printSettings(st)
		return subcommands.ExitSuccess
	}
	return run(ctx, printSettings, cmds...)
}
