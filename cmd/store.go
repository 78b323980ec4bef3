package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/ocaast/ast"
	"github.com/agentic-research/ocaast/internal/store"
)

func newStoreCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the SQLite document store",
	}

	// withStore opens the store for the duration of fn.
	withStore := func(fn func(*cobra.Command, []string, *store.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			st, err := o.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			return fn(cmd, args, st)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "put <id> <file|->",
			Short: "Validate a document and store it under id",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(cmd *cobra.Command, args []string, st *store.Store) error {
				doc, err := o.loadDocument(cmd, args[1])
				if err != nil {
					return err
				}
				if err := st.Put(cmd.Context(), args[0], doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d commands)\n", args[0], doc.Len())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print a stored document",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, st *store.Store) error {
				doc, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return o.printJSON(cmd.OutOrStdout(), doc)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored documents",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, _ []string, st *store.Store) error {
				list, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\n",
						s.ID, s.Version, s.Commands, s.Hash, s.Updated.UTC().Format(time.RFC3339))
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Remove a stored document",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, st *store.Store) error {
				return st.Delete(cmd.Context(), args[0])
			}),
		},
		&cobra.Command{
			Use:   "refs <refs:ID|refn:NAME>",
			Short: "List stored commands that mention a reference",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, st *store.Store) error {
				ref, err := ast.ParseRefValue(args[0])
				if err != nil {
					return err
				}
				locs, err := st.Referencing(cmd.Context(), ref)
				if err != nil {
					return err
				}
				printLocations(cmd, locs)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "by-code <code>",
			Short: "List stored commands targeting an object-kind code",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, st *store.Store) error {
				code, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("code %q: %w", args[0], err)
				}
				if _, err := ast.FromInt(code); err != nil {
					return err
				}
				locs, err := st.CommandsByCode(cmd.Context(), code)
				if err != nil {
					return err
				}
				printLocations(cmd, locs)
				return nil
			}),
		},
	)
	return cmd
}

func printLocations(cmd *cobra.Command, locs []store.Location) {
	for _, l := range locs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", l.DocID, l.Position, l.Verb, l.Kind)
	}
}
