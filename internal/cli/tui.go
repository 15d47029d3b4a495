package cli

import (
	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/internal/tui"
)

func newTUICmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the configuration interactively (read-only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			return tui.Run(st)
		},
	}
}
