package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tweetcsv/pkg/logger"
	"tweetcsv/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Process exit codes
const (
	exitOK     = 0
	exitConfig = 1
	exitFetch  = 2
)

// exitError carries the exit code for a command failure. The message has
// already been shown to the user when it is returned.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

type rootOptions struct {
	configFile string
	logLevel   string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	ropts := &rootOptions{}
	fopts := &fetchOptions{root: ropts}

	cmd := &cobra.Command{
		Use:   "tweetcsv",
		Short: "Download tweets carrying a hashtag into a CSV file",
		Long: `tweetcsv searches the Twitter standard search API for tweets carrying a
hashtag and appends one row per tweet to <hashtag>-tweets.csv, ready for a
bulk load into a data warehouse.

Running tweetcsv without a subcommand is the same as 'tweetcsv fetch'.

Credentials are taken from, in order:
  - Command line flags (--consumerKey, --consumerSecret, --accessToken, --accessSecret)
  - The configuration file
  - Environment variables (CONSUMER_KEY, CONSUMER_SECRET, ACCESS_TOKEN, ACCESS_TOKEN_SECRET)
  - A stored profile (--profile, see 'tweetcsv auth login')`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Version = version
			if ropts.quiet || !isTerminal(cmd.OutOrStdout()) {
				return
			}
			if cmd.Name() != "schema" && cmd.Name() != "help" {
				ui.NewPrinter(cmd.OutOrStdout()).Logo()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, fopts)
		},
	}

	cmd.PersistentFlags().StringVarP(&ropts.configFile, "config", "c", "", "config file (default is ./.tweetcsv.yaml or ~/.config/tweetcsv/config.yaml)")
	cmd.PersistentFlags().StringVar(&ropts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	cmd.PersistentFlags().BoolVarP(&ropts.quiet, "quiet", "q", false, "do not print the logo")
	bindFetchFlags(cmd, fopts)

	cmd.SetVersionTemplate(`tweetcsv {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newFetchCmd(ropts),
		newAuthCmd(ropts),
		newConfigCmd(ropts),
		newSchemaCmd(),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	// Usage errors from cobra itself: unknown flags, bad arguments.
	p := ui.NewPrinter(stderr)
	p.Error(err.Error())
	p.Println(ui.HelpHint)
	return exitConfig
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
