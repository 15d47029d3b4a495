package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
)

func newHostCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage static host entries",
	}
	cmd.AddCommand(
		newHostListCmd(ro),
		newHostAddCmd(ro),
		newHostDelCmd(ro),
		newHostUpdateCmd(ro),
	)
	return cmd
}

func newHostListCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List host entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, settings, err := ro.openStore()
			if err != nil {
				return err
			}
			printHosts(cmd.OutOrStdout(), newPalette(ro.useColor(settings)), st)
			return nil
		},
	}
}

func newHostAddCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME IP",
		Short: "Add a static host entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			if err := st.AddHost(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added host %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newHostDelCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del NAME|all",
		Short: "Delete one host entry, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			if args[0] == "all" {
				if err := st.DeleteAllHosts(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted all hosts")
				return nil
			}
			if err := st.DeleteHost(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted host %s\n", args[0])
			return nil
		},
	}
}

type hostUpdateOptions struct {
	ip      string
	newName string
}

func newHostUpdateCmd(ro *rootOptions) *cobra.Command {
	opts := hostUpdateOptions{}
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Edit the IP or rename a host entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			upd := routeconf.HostUpdate{
				IP:      changedStr(cmd, "ip", opts.ip),
				NewName: changedStr(cmd, "new-name", opts.newName),
			}
			if err := st.UpdateHost(args[0], upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated host %s\n", args[0])
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.ip, "ip", "i", "", "new IP address")
	fs.StringVarP(&opts.newName, "new-name", "n", "", "rename the host entry")
	return cmd
}
