package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/ocaast/internal/nfsmount"
)

func newServeNFSCmd(o *options) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve-nfs [mountpoint]",
		Short: "Serve the document store as a read-only NFS tree",
		Long: `Project every stored document into a directory tree and serve it over
NFSv3. With a mountpoint, the tree is also mounted (requires sudo) and
unmounted on exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := o.openStore()
			if err != nil {
				return err
			}
			proj, err := nfsmount.ProjectStore(cmd.Context(), st, o.cfg.IndentString())
			_ = st.Close()
			if err != nil {
				return err
			}

			srv, err := nfsmount.NewServer(proj.Filesystem(), listen)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()
			fmt.Fprintf(cmd.OutOrStdout(), "NFS server listening on port %d\n", srv.Port())

			if len(args) == 1 {
				mountPoint := args[0]
				if err := os.MkdirAll(mountPoint, 0o755); err != nil {
					return fmt.Errorf("create mountpoint: %w", err)
				}
				if err := nfsmount.Mount(srv.Port(), mountPoint); err != nil {
					return err
				}
				defer func() {
					if err := nfsmount.Unmount(mountPoint); err != nil {
						o.logger.Warn("unmount failed", zap.String("mountpoint", mountPoint), zap.Error(err))
					}
				}()
				fmt.Fprintf(cmd.OutOrStdout(), "Mounted at %s\n", mountPoint)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", nfsmount.DefaultListenAddr, "Listen address")
	return cmd
}
