package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
)

func newServerCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage listening servers and forwarders",
	}
	cmd.AddCommand(
		newServerListCmd(ro),
		newServerAddCmd(ro),
		newServerAddFwdCmd(ro),
		newServerDelCmd(ro),
		newServerUpdateCmd(ro),
	)
	return cmd
}

func newServerListCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List servers with their indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, settings, err := ro.openStore()
			if err != nil {
				return err
			}
			printServers(cmd.OutOrStdout(), newPalette(ro.useColor(settings)), st)
			return nil
		},
	}
}

func newServerAddCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add PROTO HOST PORT TABLE",
		Short: "Add a listening server bound to a routing table",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			index, err := st.AddServer(args[0], args[1], args[2], args[3])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added server %d\n", index)
			return nil
		},
	}
}

func newServerAddFwdCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-fwd LOCALHOST LOCALPORT CHAIN REMOTEHOST REMOTEPORT",
		Short: "Add a port forwarder through a chain or proxy",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			index, err := st.AddForwarder(args[0], args[1], args[2], args[3], args[4])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added forwarder %d\n", index)
			return nil
		},
	}
}

func newServerDelCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del INDEX|all",
		Short: "Delete the server at INDEX, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			if args[0] == "all" {
				if err := st.DeleteAllServers(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted all servers")
				return nil
			}
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			conn, err := st.DeleteServer(index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted server %d (%s)\n", index, conn)
			return nil
		},
	}
}

type serverUpdateOptions struct {
	proto string
	host  string
	port  string
	table string
}

func newServerUpdateCmd(ro *rootOptions) *cobra.Command {
	opts := serverUpdateOptions{}
	cmd := &cobra.Command{
		Use:   "update INDEX",
		Short: "Edit components of the server at INDEX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			upd := routeconf.ServerUpdate{
				Scheme: changedStr(cmd, "proto", opts.proto),
				Host:   changedStr(cmd, "host", opts.host),
				Port:   changedStr(cmd, "port", opts.port),
				Table:  changedStr(cmd, "table", opts.table),
			}
			conn, err := st.UpdateServer(index, upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated server %d (%s)\n", index, conn)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.proto, "proto", "t", "", "server scheme")
	fs.StringVarP(&opts.host, "host", "H", "", "listen host")
	fs.StringVarP(&opts.port, "port", "P", "", "listen port")
	fs.StringVarP(&opts.table, "table", "T", "", "routing table")
	return cmd
}
