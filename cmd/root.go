// Package cmd provides the command-line interface for catr.
//
// Configuration System:
//
//	Values are layered with clear precedence:
//	1. Command-line flags (-n, -b, --log-level, ...) - highest priority
//	2. CATR_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (CATR_NUMBER, CATR_LOG_LEVEL, ...)
//	4. Configuration file (.catr.yml in the working or home directory) - lowest priority
//
// Numbering given on the command line replaces numbering from the other
// layers rather than merging with it.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/catr/internal/config"
	catrerrors "github.com/conneroisu/catr/internal/errors"
	"github.com/conneroisu/catr/internal/logging"
	"github.com/conneroisu/catr/internal/renderer"
	"github.com/conneroisu/catr/internal/source"
	"github.com/conneroisu/catr/internal/version"
)

type rootOptions struct {
	cfgFile string
}

// NewRootCommand builds the catr command. Every call returns an independent
// command with its own Viper instance.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "catr [FILE...]",
		Short: "Concatenate files and print them, optionally numbering lines",
		Long: `catr prints each FILE to standard output, in order.

With no FILE, or when FILE is -, standard input is read. Files that cannot be
opened are reported on standard error and skipped.

Examples:
  catr notes.txt todo.txt      Print both files
  catr -n main.go              Number every line
  printf 'a\n\nb\n' | catr -b  Number only non-empty lines`,
		Version:       version.GetShortVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(cmd, v, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolP(config.KeyNumber, "n", false, "number all output lines")
	flags.BoolP(config.KeyNumberNonblank, "b", false, "number non-empty output lines")
	cmd.MarkFlagsMutuallyExclusive(config.KeyNumber, config.KeyNumberNonblank)

	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is .catr.yml, can also use CATR_CONFIG_FILE env var)")
	flags.StringP(config.KeyLogLevel, "l", "warn", "log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "text", "log format (text, json)")
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup(config.KeyLogLevel))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup(config.KeyLogFormat))

	cmd.SetVersionTemplate(versionTemplate())
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return catrerrors.NewUsageError(err.Error())
	})

	return cmd
}

// versionTemplate reports the short version and target platform, marking
// builds that were not cut from a release tag.
func versionTemplate() string {
	tmpl := `{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}} ` + version.Platform()
	if !version.IsRelease() {
		tmpl += " (development build)"
	}

	return tmpl + "\n"
}

// Execute runs the root command and reports a failure on stderr exactly
// once. The returned error means the process should exit non-zero.
func Execute(ctx context.Context) error {
	return execute(ctx, NewRootCommand())
}

func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	err = classify(err)
	reportError(cmd.ErrOrStderr(), cmd.CommandPath(), err)

	return err
}

// classify tags errors cobra raises on its own, such as flag group
// violations, as usage errors.
func classify(err error) error {
	var ce *catrerrors.CatrError
	if errors.As(err, &ce) || errors.Is(err, context.Canceled) {
		return err
	}

	return catrerrors.NewUsageError(err.Error())
}

func reportError(w io.Writer, commandPath string, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Error: interrupted")
		return
	}

	fmt.Fprintln(w, "Error:", err)
	if catrerrors.IsUsageError(err) {
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", commandPath)
	}
}

func runCat(cmd *cobra.Command, v *viper.Viper, opts *rootOptions, args []string) error {
	ctx := cmd.Context()

	used, err := config.ReadInConfig(v, opts.cfgFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load(v, cmd.Flags(), args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger.Debug(ctx, "configuration loaded",
		"config_file", used,
		"sources", len(cfg.Files),
		"numbering", cfg.Numbering().String())

	resolver := source.NewResolver(afero.NewOsFs(), cmd.InOrStdin())

	return renderer.New(resolver, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger).Run(ctx, cfg)
}

func newLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, catrerrors.NewConfigError("invalid "+config.KeyLogLevel, err)
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    w,
		Component: "catr",
	}), nil
}
