package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Environment passed to extensions, so they work on the same shop.
const (
	EnvDataDir     = "FLAGSHIP_DATA_DIR"
	EnvDatabaseURL = "FLAGSHIP_DATABASE_URL"
	EnvVerbose     = "FLAGSHIP_VERBOSE"
)

// extension returns the command running the external fsh-<subcommand>
// binary, or an error if there is none in PATH.
func extension(subcommand string, args []string) (*exec.Cmd, error) {
	name := "fsh-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return nil, err
	}
	cfg := loadConfig()
	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvDataDir+"="+cfg.DataDir,
		EnvDatabaseURL+"="+cfg.DatabaseURL,
		EnvVerbose+"="+strconv.FormatBool(cfg.Verbose),
	)
	return cmd, nil
}

// RunExtension attempts to find and execute an external fsh-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	cmd, err := extension(subcommand, args)
	if err != nil {
		log.WithError(err).Debugf("no extension for %q", subcommand)
		return false, 0
	}
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return true, exit.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing extension %q: %v\n", cmd.Path, err)
		return true, 1
	}
	return true, 0
}
