package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/flagship"
	"github.com/etnz/flagship/remote"
	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

// openStore opens the snapshot store: Postgres when a database url is
// configured, the data folder otherwise.
func openStore(ctx context.Context, cfg Config) (flagship.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		db, err := flagship.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}
	return flagship.FileStore{Dir: cfg.DataDir}, func() {}, nil
}

// theme is the markdown style, following the shop preference once loaded.
var theme = flagship.Dark

// loadState opens the store and reads the shop state.
func loadState(ctx context.Context) (flagship.Store, flagship.State, func(), error) {
	store, closer, err := openStore(ctx, loadConfig())
	if err != nil {
		return nil, flagship.State{}, nil, fmt.Errorf("cannot open store: %w", err)
	}
	st, err := flagship.Load(ctx, store)
	if err != nil {
		closer()
		return nil, flagship.State{}, nil, fmt.Errorf("cannot load shop: %w", err)
	}
	theme = st.Theme
	return store, st, closer, nil
}

// run applies cmds to the saved state and saves the result. The new state is
// passed to then, if not nil.
func run(ctx context.Context, then func(flagship.State), cmds ...flagship.Command) subcommands.ExitStatus {
	store, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()

	next, err := flagship.Apply(st, cmds...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := flagship.Save(ctx, store, next); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving shop: %v\n", err)
		return subcommands.ExitFailure
	}
	if then != nil {
		then(next)
	}
	return subcommands.ExitSuccess
}

// view loads the state and prints the markdown returned by render.
func view(ctx context.Context, render func(flagship.State) string) subcommands.ExitStatus {
	_, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()
	printMarkdown(render(st))
	return subcommands.ExitSuccess
}

// newRemote returns the configured blob store. GitHub is used when selected,
// or when the shop remembers a repository.
func newRemote(cfg Config, st flagship.State) flagship.BlobStore {
	repo := cfg.GitHubRepo
	if repo == "" {
		repo = st.SyncSettings.RepoName
	}
	if cfg.Remote == "github" || (repo != "" && cfg.GitHubToken != "") {
		return remote.GitHub{Client: httpClient, Token: cfg.GitHubToken, Repo: repo, Path: cfg.GitHubPath}
	}
	return remote.JSONBlob{Client: httpClient, BaseURL: cfg.JSONBlobURL}
}

func newRates(cfg Config) flagship.RateSource {
	return flagship.HTTPRates{
		Client:   httpClient,
		URL:      cfg.RatesURL,
		Currency: cfg.RateCurrency,
	}
}

var httpClient = newHTTPClient()

func newHTTPClient() *http.Client { return &http.Client{Timeout: 30 * time.Second} }

// printMarkdown renders md for the terminal, or prints it raw when it cannot.
// glamourStyle is the glamour style of the current theme.
func glamourStyle() string {
	if theme == flagship.Light {
		return "light"
	}
	return "dark"
}

func printMarkdown(md string) {
	out, err := glamour.Render(md, glamourStyle())
	if err != nil {
		log.WithError(err).Debug("cannot render markdown")
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

// confirm asks a yes/no question on r, no being the default.
func confirm(w io.Writer, r io.Reader, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// resolveDevice finds a device by id prefix, or exits with a message.
func resolveDevice(st flagship.State, ref string) (flagship.Device, bool) {
	d, ok := st.ResolveDevice(ref)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no single device matches %q\n", ref)
	}
	return d, ok
}

func resolveSale(st flagship.State, ref string) (flagship.Sale, bool) {
	s, ok := st.ResolveSale(ref)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no single sale matches %q\n", ref)
	}
	return s, ok
}
