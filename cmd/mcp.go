package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/ocaast/internal/mcpserver"
)

func newMCPCmd(o *options) *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve OCA document tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := mcpserver.Options{
				Name:    o.cfg.MCP.Name,
				Version: o.cfg.MCP.Version,
				Logger:  o.logger,
			}
			if !noStore {
				st, err := o.openStore()
				if err != nil {
					return err
				}
				defer func() { _ = st.Close() }()
				opts.Store = st
			}
			o.logger.Info("serving MCP on stdio", zap.String("name", opts.Name), zap.Bool("store", opts.Store != nil))
			return mcpserver.New(opts).ServeStdio()
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not expose the document store tools")
	return cmd
}
