// Package cmd implements the ocaast command line.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/ocaast/ast"
	"github.com/agentic-research/ocaast/internal/config"
	"github.com/agentic-research/ocaast/internal/index"
	"github.com/agentic-research/ocaast/internal/source"
	"github.com/agentic-research/ocaast/internal/store"
)

// options carries the global flags and the state built from them before
// any subcommand runs.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	dbPath     string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "ocaast",
		Short:         "Decode, validate, index and store OCA documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Path to HCL config file")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&o.logFormat, "log-format", "", "Log format (console, json)")
	pf.StringVar(&o.dbPath, "db", "", "Path to the SQLite document store")

	root.AddCommand(
		newValidateCmd(o),
		newLintCmd(o),
		newCodesCmd(o),
		newIndexCmd(o),
		newQueryCmd(o),
		newStoreCmd(o),
		newMCPCmd(o),
		newServeNFSCmd(o),
	)
	return root
}

// setup loads the config file, applies flag overrides and installs the
// logger into the library packages.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("db") {
		cfg.Database = o.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	ast.SetLogger(logger)
	index.SetLogger(logger)

	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *options) openStore() (*store.Store, error) {
	return store.Open(o.cfg.Database, store.WithLogger(o.logger))
}

// loadDocument reads a document from a file path, or from stdin when path
// is "-".
func (o *options) loadDocument(cmd *cobra.Command, path string) (*ast.OCAAst, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return source.Decode(data, source.FormatUnknown)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return source.NewOSLoader(filepath.Dir(abs)).Load(filepath.Base(abs))
}

func (o *options) printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", o.cfg.IndentString())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
