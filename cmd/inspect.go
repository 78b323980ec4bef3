package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/ocaast/internal/index"
	"github.com/agentic-research/ocaast/internal/query"
)

func newCodesCmd(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Print the object-kind code table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := index.CodeTable()
			if asJSON {
				return o.printJSON(cmd.OutOrStdout(), rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-22s %s\n", r.Code, r.Kind, r.Canonical)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newIndexCmd(o *options) *cobra.Command {
	var (
		concepts bool
		selectFs []string
	)
	cmd := &cobra.Command{
		Use:   "index <file|->",
		Short: "Show which commands target each object kind and which one writes it last",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			idx, err := index.Build(doc)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(selectFs) > 0 {
				fmt.Fprintln(out, joinInts(index.Positions(idx.Select(selectFs...))))
				return nil
			}

			for _, w := range idx.LastWriters() {
				fmt.Fprintf(out, "%2d  %-40s last=%d  commands=%s\n",
					w.Code, w.Kind, w.Position, joinInts(index.Positions(idx.ByCode(w.Code))))
			}
			if concepts {
				ctx := idx.Context()
				for _, c := range idx.Concepts() {
					if c.Extent.IsEmpty() || c.Intent.IsEmpty() {
						continue
					}
					fmt.Fprintf(out, "concept commands=%s features=%s\n",
						joinInts(index.Positions(c.Extent)), strings.Join(ctx.Names(c.Intent), ","))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&concepts, "concepts", false, "Also list groups of commands sharing features")
	cmd.Flags().StringSliceVar(&selectFs, "select", nil, "Print positions of commands having all features (e.g. kind=Overlay,attribute=name)")
	return cmd
}

func newQueryCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <file|-> <jsonpath>",
		Short: "Run a JSONPath expression over the canonical JSON form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			matches, err := query.NewJSONWalker().Document(doc, args[1])
			if err != nil {
				return err
			}
			return o.printJSON(cmd.OutOrStdout(), query.Contexts(matches))
		},
	}
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
