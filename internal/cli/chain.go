package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
)

func newChainCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Manage proxy chains",
	}
	cmd.AddCommand(
		newChainListCmd(ro),
		newChainAddCmd(ro),
		newChainDelCmd(ro),
		newChainUpdateCmd(ro),
	)
	return cmd
}

func newChainListCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, settings, err := ro.openStore()
			if err != nil {
				return err
			}
			printChains(cmd.OutOrStdout(), newPalette(ro.useColor(settings)), st)
			return nil
		},
	}
}

type chainAddOptions struct {
	name           string
	readTimeout    int
	connectTimeout int
	proxyDNS       bool
}

func newChainAddCmd(ro *rootOptions) *cobra.Command {
	opts := chainAddOptions{}
	cmd := &cobra.Command{
		Use:   "add PROXY...",
		Short: "Add a chain over existing proxies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			chainOpts := routeconf.ChainOptions{
				TCPReadTimeout:    changedInt(cmd, "read-timeout", opts.readTimeout),
				TCPConnectTimeout: changedInt(cmd, "connect-timeout", opts.connectTimeout),
				ProxyDNS:          changedBool(cmd, "proxy-dns", opts.proxyDNS),
			}
			name, err := st.AddChain(opts.name, args, chainOpts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added chain %s\n", name)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.name, "name", "n", "", "chain name (default chain1..chain999, first unused)")
	fs.IntVar(&opts.readTimeout, "read-timeout", 0, "tcp read timeout in milliseconds")
	fs.IntVar(&opts.connectTimeout, "connect-timeout", 0, "tcp connect timeout in milliseconds")
	fs.BoolVar(&opts.proxyDNS, "proxy-dns", false, "resolve names through the chain")
	return cmd
}

func newChainDelCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del NAME|all",
		Short: "Delete one chain, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			if args[0] == "all" {
				if err := st.DeleteAllChains(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted all chains")
				return nil
			}
			if err := st.DeleteChain(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted chain %s\n", args[0])
			return nil
		},
	}
}

type chainUpdateOptions struct {
	proxies        []string
	readTimeout    int
	connectTimeout int
	proxyDNS       bool
	newName        string
}

func newChainUpdateCmd(ro *rootOptions) *cobra.Command {
	opts := chainUpdateOptions{}
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Edit the proxy sequence, settings, or rename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			upd := routeconf.ChainUpdate{
				TCPReadTimeout:    changedInt(cmd, "read-timeout", opts.readTimeout),
				TCPConnectTimeout: changedInt(cmd, "connect-timeout", opts.connectTimeout),
				ProxyDNS:          changedBool(cmd, "proxy-dns", opts.proxyDNS),
				NewName:           changedStr(cmd, "new-name", opts.newName),
			}
			if cmd.Flags().Changed("proxies") {
				upd.Proxies = opts.proxies
			}
			if err := st.UpdateChain(args[0], upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated chain %s\n", args[0])
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVarP(&opts.proxies, "proxies", "p", nil, "replace the proxy sequence")
	fs.IntVar(&opts.readTimeout, "read-timeout", 0, "tcp read timeout in milliseconds")
	fs.IntVar(&opts.connectTimeout, "connect-timeout", 0, "tcp connect timeout in milliseconds")
	fs.BoolVar(&opts.proxyDNS, "proxy-dns", false, "resolve names through the chain")
	fs.StringVarP(&opts.newName, "new-name", "N", "", "rename the chain (route targets are not rewritten)")
	return cmd
}
