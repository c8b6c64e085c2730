package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/flagship"
	"github.com/google/subcommands"
)

type pushCmd struct{}

func (*pushCmd) Name() string     { return "push" }
func (*pushCmd) Synopsis() string { return "back up the shop to the remote store" }
func (*pushCmd) Usage() string {
	return `fsh push

  Uploads the shop to jsonblob.com, or to a GitHub repository when
  FLAGSHIP_REMOTE=github. The first push creates the blob and remembers its
  key for the next ones.
`
}
func (*pushCmd) SetFlags(f *flag.FlagSet) {}

func (c *pushCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	closer()

	synced, err := flagship.Push(ctx, newRemote(loadConfig(), st), st, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error pushing: %v\n", err)
		return subcommands.ExitFailure
	}
	return run(ctx, func(st flagship.State) {
		fmt.Printf("Pushed to %s at %s\n", st.SyncSettings.BlobKey, st.SyncSettings.LastSync)
	}, synced)
}

type pullCmd struct {
	yes bool
}

func (*pullCmd) Name() string     { return "pull" }
func (*pullCmd) Synopsis() string { return "replace the shop with a remote backup" }
func (*pullCmd) Usage() string {
	return `fsh pull [-y] [<key>]

  Downloads a backup and replaces every local record with it. Without a key,
  the blob of the last push is used.
`
}

func (c *pullCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *pullCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: pull takes at most one key.")
		return subcommands.ExitUsageError
	}
	_, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	closer()

	key := st.SyncSettings.BlobKey
	if f.NArg() == 1 {
		key = f.Arg(0)
	}
	restore, err := flagship.Pull(ctx, newRemote(loadConfig(), st), key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error pulling: %v\n", err)
		return subcommands.ExitFailure
	}
	snap := restore.Snapshot
	question := fmt.Sprintf("Replace %d devices and %d sales with %d devices and %d sales from %s?",
		len(st.Devices), len(st.Sales), len(snap.Devices), len(snap.Sales), key)
	if !c.yes && !confirm(os.Stdout, os.Stdin, question) {
		fmt.Println("Cancelled.")
		return subcommands.ExitSuccess
	}
	return run(ctx, func(st flagship.State) {
		fmt.Printf("Restored %d devices and %d sales\n", len(st.Devices), len(st.Sales))
	}, restore)
}
