package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
)

func newProxyCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Manage upstream proxies",
	}
	cmd.AddCommand(
		newProxyListCmd(ro),
		newProxyAddCmd(ro),
		newProxyDelCmd(ro),
		newProxyUpdateCmd(ro),
	)
	return cmd
}

func newProxyListCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List proxies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, settings, err := ro.openStore()
			if err != nil {
				return err
			}
			printProxies(cmd.OutOrStdout(), newPalette(ro.useColor(settings)), st)
			return nil
		},
	}
}

type proxyAddOptions struct {
	name string
	user string
	pass string
}

func newProxyAddCmd(ro *rootOptions) *cobra.Command {
	opts := proxyAddOptions{}
	cmd := &cobra.Command{
		Use:   "add PROTO HOST PORT",
		Short: "Add a proxy, generating a name unless --name is given",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			conn := fmt.Sprintf("%s://%s:%s", args[0], args[1], args[2])
			name, err := st.AddProxy(opts.name, conn, opts.user, opts.pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added proxy %s (%s)\n", name, conn)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.name, "name", "n", "", "proxy name (default proxy1..proxy999, first unused)")
	fs.StringVarP(&opts.user, "user", "u", "", "proxy username")
	fs.StringVarP(&opts.pass, "pass", "p", "", "proxy password")
	return cmd
}

func newProxyDelCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del NAME|all",
		Short: "Delete one proxy, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			if args[0] == "all" {
				if err := st.DeleteAllProxies(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted all proxies")
				return nil
			}
			if err := st.DeleteProxy(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted proxy %s\n", args[0])
			return nil
		},
	}
}

type proxyUpdateOptions struct {
	proto   string
	host    string
	port    string
	user    string
	pass    string
	newName string
}

func newProxyUpdateCmd(ro *rootOptions) *cobra.Command {
	opts := proxyUpdateOptions{}
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Edit connstring parts, credentials, or rename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			upd := routeconf.ProxyUpdate{
				Scheme:  changedStr(cmd, "proto", opts.proto),
				Host:    changedStr(cmd, "host", opts.host),
				Port:    changedStr(cmd, "port", opts.port),
				User:    changedStr(cmd, "user", opts.user),
				Pass:    changedStr(cmd, "pass", opts.pass),
				NewName: changedStr(cmd, "new-name", opts.newName),
			}
			if err := st.UpdateProxy(args[0], upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated proxy %s\n", args[0])
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.proto, "proto", "t", "", "connstring scheme")
	fs.StringVarP(&opts.host, "host", "H", "", "connstring host")
	fs.StringVarP(&opts.port, "port", "P", "", "connstring port")
	fs.StringVarP(&opts.user, "user", "u", "", "proxy username")
	fs.StringVarP(&opts.pass, "pass", "p", "", "proxy password")
	fs.StringVarP(&opts.newName, "new-name", "n", "", "rename the proxy")
	return cmd
}
