package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/etnz/flagship"
	"github.com/etnz/flagship/agent"
	"github.com/etnz/flagship/server"
	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the shop and serve its json api" }
func (*serveCmd) Usage() string {
	return `fsh serve [-addr <host:port>]

  Runs the shop until interrupted: the exchange rate is refreshed every hour
  and, with auto sync on, every change is pushed to the remote store. The
  json api is served under /api/v1.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on. Overrides FLAGSHIP_ADDR.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := loadConfig()
	if c.addr != "" {
		cfg.Addr = c.addr
	}
	store, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()

	opts := flagship.Options{
		Rates:           newRates(cfg),
		Remote:          newRemote(cfg, st),
		RefreshInterval: cfg.RefreshInterval,
		AutoSyncDelay:   cfg.AutoSyncDelay,
	}
	if client, err := newGemini(ctx, cfg); err != nil {
		log.WithError(err).Info("advice disabled")
	} else if opts.Advisor, err = agent.NewGemini(ctx, client, cfg.GeminiModel); err != nil {
		log.WithError(err).Warn("advice disabled")
		opts.Advisor = nil
	}

	shop, err := flagship.Open(ctx, store, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening shop: %v\n", err)
		return subcommands.ExitFailure
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(shop, time.Now),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return shop.Run(ctx) })
	g.Go(func() error {
		log.WithField("addr", cfg.Addr).Info("serving")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
