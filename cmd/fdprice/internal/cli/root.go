// Package cli wires the fdprice subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AdamDanklefsen/OptionsPricing-FD/cmd/fdprice/internal/config"
	"github.com/AdamDanklefsen/OptionsPricing-FD/logger"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

var (
	errUsage       = errors.New("usage error")
	errTasksFailed = errors.New("one or more tasks failed")
)

// env is shared by every subcommand once flags are parsed.
type env struct {
	cfg config.Config
	log *logrus.Logger
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool
}

// Run executes fdprice with args and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if len(args) == 0 {
		root.SetOut(stderr)
		_ = root.Usage()
		return ExitUsage
	}

	err := root.Execute()
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errTasksFailed):
		return ExitError
	case errors.Is(err, errUsage), strings.HasPrefix(err.Error(), "unknown command"):
		fmt.Fprintln(stderr, err)
		return ExitUsage
	default:
		fmt.Fprintln(stderr, err)
		return ExitError
	}
}

func newRootCommand() *cobra.Command {
	var flags rootFlags
	e := &env{}

	root := &cobra.Command{
		Use:   "fdprice",
		Short: "Finite-difference Black-Scholes option pricer",
		Long: `fdprice values European and American vanilla options by marching the
Black-Scholes PDE backward on a spot grid with implicit Euler steps.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if flags.logLevel != "" {
				cfg.Logging.Level = flags.logLevel
			}
			if flags.logFormat != "" {
				cfg.Logging.Format = flags.logFormat
			}
			if flags.verbose {
				cfg.Solver.Verbose = true
			}
			log, err := logger.New(cmd.ErrOrStderr(), cfg.Logging)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			e.cfg, e.log = cfg, log
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format (text, json)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log backward-march progress")

	root.AddCommand(
		newPriceCommand(e),
		newCurveCommand(e),
		newConvergenceCommand(e),
	)
	return root
}
