package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailures = 1
	exitConfig   = 2
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return err
	}
	return &exitError{code: code, err: err}
}

// exitCode maps an Execute error to a process exit code. Errors without a
// code come from flag and argument parsing.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return exitConfig
}

func main() {
	a := &app{sessions: launchBrowsers, now: time.Now}
	os.Exit(exitCode(newRootCmd(a).Execute()))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "flightcheck",
		Short: "Data-driven browser tests for the flight booking flow",
		Long: `flightcheck drives a real browser through the flight booking form
(route, trip type, dates, passengers, search) for every scenario in the
data file and reports what it saw.

Select cases with a filter: no filter or "all" runs everything, "smoke" or
"regression" selects a tag, "<kind>_test" selects one test file, and a
case name such as "infant_limit/two_adults" selects a single case.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./flightcheck.yaml when present)")
	flags.String("data", "data/scenarios.yaml", "scenario data file")
	flags.Bool("headless", true, "run browsers without a window")
	flags.Int("workers", 2, "cases run in parallel")
	flags.Int("reruns", 1, "reruns of a failed case")
	flags.Int("timeout", 30000, "per-operation timeout in milliseconds")
	flags.String("base-url", "", "booking page URL")
	flags.Int("slow-mo", 0, "delay between browser actions in milliseconds")
	flags.Bool("maximize", false, "launch maximized instead of using the viewport size")
	flags.String("reports", "reports", "report directory")

	root.AddCommand(
		newRunCmd(a),
		newListCmd(a),
		newValidateCmd(a),
		newWatchCmd(a),
		newReportsCmd(a),
		newVersionCmd(root),
	)
	return root
}

func newVersionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flightcheck %s\n", root.Version)
		},
	}
}
