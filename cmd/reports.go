package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/flagship"
	"github.com/etnz/flagship/agent"
	"github.com/etnz/flagship/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display the headline figures of the shop" }
func (*dashboardCmd) Usage() string {
	return `fsh dashboard

  Displays total assets, cash, stock value, debt, profit and the exchange
  rates.
`
}
func (*dashboardCmd) SetFlags(f *flag.FlagSet) {}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return view(ctx, func(st flagship.State) string {
		return renderer.DashboardMarkdown(flagship.Summarize(st))
	})
}

type analyticsCmd struct {
	daily  bool
	sparse bool
}

func (*analyticsCmd) Name() string     { return "analytics" }
func (*analyticsCmd) Synopsis() string { return "chart the profit per month or per day" }
func (*analyticsCmd) Usage() string {
	return `fsh analytics [-daily] [-sparse]

  Charts the profit of completed sales for each month of the current year,
  or for each day of the current month with -daily.
`
}

func (c *analyticsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.daily, "daily", false, "Chart the days of the current month instead of the months of the year")
	f.BoolVar(&c.sparse, "sparse", false, "Hide periods without profit")
}

func (c *analyticsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return view(ctx, func(st flagship.State) string {
		now := time.Now()
		a := renderer.NewAnalytics("Monthly profit", flagship.MonthlyProfit(st, now))
		if c.daily {
			a = renderer.NewAnalytics("Daily profit", flagship.DailyProfit(st, now))
		}
		return renderer.RenderAnalytics(a, c.sparse)
	})
}

type adviseCmd struct {
	interactive bool
}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "ask Gemini for business advice" }
func (*adviseCmd) Usage() string {
	return `fsh advise [-i] [question...]

  Sends the shop figures to Gemini and prints its advice. With -i, starts an
  interactive session where the assistant can read the books; the question,
  if any, is asked first.

  Needs FLAGSHIP_GEMINI_API_KEY or GEMINI_API_KEY.
`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "Start an interactive session")
}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := loadConfig()
	store, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()

	client, err := newGemini(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	if c.interactive {
		source := func(ctx context.Context) (flagship.State, error) { return flagship.Load(ctx, store) }
		session := agent.NewSession(os.Stdout, os.Stdin, cfg.GeminiModel,
			agent.NewConsultant(cfg.GeminiModel),
			agent.NewBookkeeper(cfg.GeminiModel, source),
		)
		session.Render = agent.Markdown(glamourStyle())
		if err := session.Run(ctx, client, strings.Join(f.Args(), " ")); err != nil {
			fmt.Fprintln(os.Stderr, "Agent failed:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	advisor, err := agent.NewGemini(ctx, client, cfg.GeminiModel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting the advisor:", err)
		return subcommands.ExitFailure
	}
	text, err := flagship.Advise(ctx, advisor, st)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error getting advice:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(text)
	return subcommands.ExitSuccess
}

// newGemini returns a Gemini client, or ErrNotConfigured without an api key.
func newGemini(ctx context.Context, cfg Config) (*genai.Client, error) {
	key := cfg.GeminiAPIKey
	if key == "" {
		key = os.Getenv(agent.APIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: no gemini api key", flagship.ErrNotConfigured)
	}
	return agent.NewClient(ctx, key)
}
