package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-research/ocaast/ast"
	"github.com/agentic-research/ocaast/internal/linter"
	"github.com/agentic-research/ocaast/internal/source"
)

var errInvalid = errors.New("invalid documents")

func newValidateCmd(o *options) *cobra.Command {
	var lint bool
	cmd := &cobra.Command{
		Use:   "validate <file|dir|->...",
		Short: "Decode documents and report structural errors",
		Long: `Decode each document and report the first structural error, with its
kind (missing_field, unknown_object_kind, unknown_overlay_type,
invalid_value) and the field path where it occurred. Directories are walked
for .json, .yaml and .yml files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var total, bad int
			for _, arg := range args {
				for _, l := range o.loadAll(cmd, arg) {
					total++
					if l.Err != nil {
						bad++
						fmt.Fprintf(out, "%s: %s\n", l.Path, describe(l.Err))
						continue
					}
					fmt.Fprintf(out, "%s: ok (version %s, %d commands)\n", l.Path, l.Doc.Version(), l.Doc.Len())
					if lint {
						printDiagnostics(out, l.Path, linter.Lint(l.Doc))
					}
				}
			}
			if bad > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalid, bad, total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&lint, "lint", false, "Also print lint findings for valid documents")
	return cmd
}

func newLintCmd(o *options) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "lint <file|dir|->...",
		Short: "Report advisory findings for valid documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var warnings int
			for _, arg := range args {
				for _, l := range o.loadAll(cmd, arg) {
					if l.Err != nil {
						return fmt.Errorf("%s: %w", l.Path, l.Err)
					}
					diags := linter.Lint(l.Doc)
					for _, d := range diags {
						if d.Severity == linter.Warning {
							warnings++
						}
					}
					printDiagnostics(out, l.Path, diags)
				}
			}
			if strict && warnings > 0 {
				return fmt.Errorf("%d lint warnings", warnings)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any warning is reported")
	return cmd
}

// loadAll expands arg into loaded documents: stdin, one file, or every
// document under a directory.
func (o *options) loadAll(cmd *cobra.Command, arg string) []source.Loaded {
	if arg != "-" {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			loaded, err := source.NewOSLoader(arg).LoadTree(".")
			if err != nil {
				return []source.Loaded{{Path: arg, Err: err}}
			}
			for i := range loaded {
				loaded[i].Path = filepath.Join(arg, loaded[i].Path)
			}
			return loaded
		}
	}
	doc, err := o.loadDocument(cmd, arg)
	return []source.Loaded{{Path: arg, Doc: doc, Err: err}}
}

func printDiagnostics(w io.Writer, path string, diags []linter.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s: %s\n", path, d)
	}
}

// describe leads with the error kind so scripts can grep for it.
func describe(err error) string {
	var e *ast.Error
	if errors.As(err, &e) {
		return fmt.Sprintf("[%s] %v", e.Kind, err)
	}
	var re *ast.RefValueParsingError
	if errors.As(err, &re) {
		return fmt.Sprintf("[%s] %v", re.Kind, err)
	}
	return err.Error()
}
