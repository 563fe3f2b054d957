package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"salesaudit/app"
	"salesaudit/internal/config"
	"salesaudit/internal/errors"
	"salesaudit/internal/logging"
	"salesaudit/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return errors.ExitCode(err)
	}
	return 0
}

type globalOptions struct {
	cfgFile  string
	logLevel string
}

type runOptions struct {
	csv  string
	base string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	global := &globalOptions{}
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "salesaudit",
		Short: "Data quality audit and hypothesis tests for sales exports",
		Long: `salesaudit profiles a sales export (missingness, duplicates, types, IQR
outliers), derives cleaned revenue and time features, runs a fixed battery of
hypothesis tests and writes markdown reports and plots.

Running salesaudit without a subcommand is the same as "salesaudit run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, global, opts, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	})

	rootCmd.PersistentFlags().StringVar(&global.cfgFile, "config", "", "YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&global.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	addRunFlags(rootCmd, opts)

	rootCmd.AddCommand(
		newRunCmd(global, stdout, stderr),
		newGenerateCmd(stdout),
		newConfigCmd(global, stdout),
	)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.csv, "csv", "", "path to the sales CSV or XLSX export (default data/amazon_sales.csv)")
	cmd.Flags().StringVar(&opts.base, "base", "", `project root for reports/ and visuals/ (default ".")`)
}

func newRunCmd(global *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Audit a sales export and write reports",
		Long: `Audit a sales export and write reports.

Example: salesaudit run --csv data/amazon_sales.csv --base .`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, global, opts, stdout, stderr)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

func runAudit(cmd *cobra.Command, global *globalOptions, opts *runOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(global, opts)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging, stderr)
	slog.SetDefault(logger)

	res, err := app.NewAuditService(cfg, logger).Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Audit %s: %d rows, %d columns\n", res.Manifest.RunID, res.Quality.Rows, res.Quality.Columns)
	fmt.Fprintf(stdout, "Artifacts written under %s:\n", cfg.Output.BaseDir)
	for _, a := range res.Manifest.Artifacts {
		fmt.Fprintf(stdout, "  %s\n", a)
	}
	return nil
}

// loadConfig layers command-line overrides on top of the loaded config and
// validates the result.
func loadConfig(global *globalOptions, opts *runOptions) (*config.Config, error) {
	cfg, err := config.Load(global.cfgFile)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.csv != "" {
		cfg.Input.CSVPath = opts.csv
	}
	if opts != nil && opts.base != "" {
		cfg.Output.BaseDir = opts.base
	}
	if global.logLevel != "" {
		cfg.Logging.Level = global.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newGenerateCmd(stdout io.Writer) *cobra.Command {
	gen := testkit.DefaultSalesConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic sales export for trying the audit",
		Long: `Write a synthetic sales export in the 19-column layout, with a little
missingness, duplicate order IDs and bulk-quantity outliers mixed in.

Example: salesaudit generate --out data/amazon_sales.csv --rows 25000 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gen.Rows <= 0 {
				return errors.ConfigInvalid("--rows must be positive")
			}
			if err := testkit.WriteCSVFile(out, gen); err != nil {
				return errors.WriteError(out, err)
			}
			abs, _ := filepath.Abs(out)
			fmt.Fprintf(stdout, "Generated %d rows into %s\n", gen.Rows, abs)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "data/amazon_sales.csv", "output CSV path")
	cmd.Flags().IntVar(&gen.Rows, "rows", gen.Rows, "number of orders")
	cmd.Flags().Int64Var(&gen.Seed, "seed", gen.Seed, "random seed")
	cmd.Flags().Float64Var(&gen.MissingRate, "missing-rate", gen.MissingRate, "share of blank optional cells")
	cmd.Flags().Float64Var(&gen.DuplicateRate, "duplicate-rate", gen.DuplicateRate, "share of rows reusing an earlier OrderID")
	return cmd
}

func newConfigCmd(global *globalOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, nil)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, out)
			return nil
		},
	}
}
