package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
	"github.com/r9s-ai/bbs-admin/pkg/ruleexpr"
)

var showSections = []string{"proxies", "chains", "tables", "routes", "servers", "hosts", "all"}

func newShowCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "show [section]",
		Short:     "Print the configuration, one section or all of it",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: showSections,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, settings, err := ro.openStore()
			if err != nil {
				return err
			}
			section := "all"
			if len(args) == 1 {
				section = args[0]
			}
			pal := newPalette(ro.useColor(settings))
			w := cmd.OutOrStdout()
			switch section {
			case "proxies":
				printProxies(w, pal, st)
			case "chains":
				printChains(w, pal, st)
			case "tables", "routes":
				printTables(w, pal, st)
			case "servers":
				printServers(w, pal, st)
			case "hosts":
				printHosts(w, pal, st)
			case "all":
				printProxies(w, pal, st)
				printChains(w, pal, st)
				printTables(w, pal, st)
				printServers(w, pal, st)
				printHosts(w, pal, st)
			default:
				return fmt.Errorf("unknown section %q (expect: %s)", section, strings.Join(showSections, "|"))
			}
			return nil
		},
	}
}

func printProxies(w io.Writer, pal palette, st *routeconf.Store) {
	fmt.Fprintln(w, pal.section.Render("proxies"))
	proxies := st.Proxies()
	for _, name := range sortedNames(proxies) {
		p := proxies[name]
		line := fmt.Sprintf("  %s  %s", pal.name.Render(name), p.Connstring)
		if p.User != "" {
			line += pal.dim.Render("  user=" + p.User)
		}
		fmt.Fprintln(w, line)
	}
	if len(proxies) == 0 {
		fmt.Fprintln(w, pal.dim.Render("  (none)"))
	}
}

func printChains(w io.Writer, pal palette, st *routeconf.Store) {
	fmt.Fprintln(w, pal.section.Render("chains"))
	chains := st.Chains()
	for _, name := range sortedNames(chains) {
		c := chains[name]
		line := fmt.Sprintf("  %s  %s", pal.name.Render(name), strings.Join(c.Proxies, " -> "))
		var opts []string
		if c.ProxyDNS != nil {
			opts = append(opts, fmt.Sprintf("proxyDns=%v", *c.ProxyDNS))
		}
		if c.TCPReadTimeout != nil {
			opts = append(opts, fmt.Sprintf("tcpReadTimeout=%d", *c.TCPReadTimeout))
		}
		if c.TCPConnectTimeout != nil {
			opts = append(opts, fmt.Sprintf("tcpConnectTimeout=%d", *c.TCPConnectTimeout))
		}
		if len(opts) > 0 {
			line += pal.dim.Render("  " + strings.Join(opts, " "))
		}
		fmt.Fprintln(w, line)
	}
	if len(chains) == 0 {
		fmt.Fprintln(w, pal.dim.Render("  (none)"))
	}
}

func printTables(w io.Writer, pal palette, st *routeconf.Store) {
	fmt.Fprintln(w, pal.section.Render("routes"))
	names := st.Tables()
	for _, name := range names {
		t, _ := st.Table(name)
		printTable(w, pal, name, t)
	}
	if len(names) == 0 {
		fmt.Fprintln(w, pal.dim.Render("  (none)"))
	}
}

func printTable(w io.Writer, pal palette, name string, t routeconf.Table) {
	fmt.Fprintf(w, "  %s  %s\n", pal.name.Render("table "+name), pal.dim.Render("default="+t.Default))
	for i, b := range t.Blocks {
		fmt.Fprintln(w, formatBlock(pal, i, b))
	}
}

func formatBlock(pal palette, index int, b routeconf.Block) string {
	rule := "true"
	if b.Rules != nil {
		data, err := ruleexpr.Marshal(b.Rules)
		if err == nil {
			rule = string(data)
		}
	}
	line := fmt.Sprintf("    %d  %s -> %s", index, rule, pal.name.Render(b.Route))
	if b.Comment != "" {
		line += pal.dim.Render("  # " + b.Comment)
	}
	if b.Disable {
		line += pal.warn.Render("  (disabled)")
	}
	return line
}

func printServers(w io.Writer, pal palette, st *routeconf.Store) {
	fmt.Fprintln(w, pal.section.Render("servers"))
	servers := st.Servers()
	for i, conn := range servers {
		fmt.Fprintf(w, "  %d  %s\n", i, conn)
	}
	if len(servers) == 0 {
		fmt.Fprintln(w, pal.dim.Render("  (none)"))
	}
}

func printHosts(w io.Writer, pal palette, st *routeconf.Store) {
	fmt.Fprintln(w, pal.section.Render("hosts"))
	hosts := st.Hosts()
	for _, name := range sortedNames(hosts) {
		fmt.Fprintf(w, "  %s  %s\n", pal.name.Render(name), hosts[name])
	}
	if len(hosts) == 0 {
		fmt.Fprintln(w, pal.dim.Render("  (none)"))
	}
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
