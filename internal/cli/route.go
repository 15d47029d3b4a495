package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
	"github.com/r9s-ai/bbs-admin/pkg/ruleexpr"
)

func newRouteCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Manage routing tables and their rule blocks",
	}
	cmd.AddCommand(
		newRouteListTablesCmd(ro),
		newRouteListCmd(ro),
		newRouteAddCmd(ro),
		newRouteUpdateCmd(ro),
		newRouteDelCmd(ro),
		newRouteDelTableCmd(ro),
		newRouteUpdateDefaultCmd(ro),
	)
	return cmd
}

func newRouteListTablesCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-tables",
		Short: "List routing table names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			for _, name := range st.Tables() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newRouteListCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list TABLE",
		Short: "List the blocks of one table with their indexes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, settings, err := ro.openStore()
			if err != nil {
				return err
			}
			t, ok := st.Table(args[0])
			if !ok {
				return fmt.Errorf("table %q does not exist", args[0])
			}
			printTable(cmd.OutOrStdout(), newPalette(ro.useColor(settings)), args[0], t)
			return nil
		},
	}
}

type routeAddOptions struct {
	position int
	comment  string
	disable  bool
}

func newRouteAddCmd(ro *rootOptions) *cobra.Command {
	opts := routeAddOptions{}
	cmd := &cobra.Command{
		Use:   "add TABLE EXPR TARGET",
		Short: "Compile EXPR and add a rule block (creates the table on first use)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			rule, err := ruleexpr.Compile(args[1])
			if err != nil {
				return err
			}
			index, err := st.AddRoute(args[0], rule, args[2], opts.comment,
				changedInt(cmd, "position", opts.position), opts.disable)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added route %d to table %s\n", index, args[0])
			return nil
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&opts.position, "position", "p", 0, "insert position (default: append)")
	fs.StringVar(&opts.comment, "comment", "", "block comment")
	fs.BoolVar(&opts.disable, "disable", false, "add the block disabled")
	return cmd
}

type routeUpdateOptions struct {
	expr     string
	target   string
	comment  string
	disable  bool
	enable   bool
	newIndex int
}

func newRouteUpdateCmd(ro *rootOptions) *cobra.Command {
	opts := routeUpdateOptions{}
	cmd := &cobra.Command{
		Use:   "update TABLE INDEX",
		Short: "Edit or move the block at INDEX",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.disable && opts.enable {
				return fmt.Errorf("--disable and --enable are mutually exclusive")
			}
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			upd := routeconf.RouteUpdate{
				Target:   changedStr(cmd, "target", opts.target),
				Comment:  changedStr(cmd, "comment", opts.comment),
				NewIndex: changedInt(cmd, "new-index", opts.newIndex),
			}
			if cmd.Flags().Changed("expr") {
				rule, err := ruleexpr.Compile(opts.expr)
				if err != nil {
					return err
				}
				upd.Rules = rule
				upd.SetRules = true
			}
			if opts.disable {
				v := true
				upd.Disable = &v
			}
			if opts.enable {
				v := false
				upd.Disable = &v
			}
			if err := st.UpdateRoute(args[0], index, upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated route %d in table %s\n", index, args[0])
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.expr, "expr", "e", "", "replace the rule expression (empty matches everything)")
	fs.StringVarP(&opts.target, "target", "t", "", "new target: drop, a chain, or a proxy")
	fs.StringVar(&opts.comment, "comment", "", "new comment")
	fs.BoolVar(&opts.disable, "disable", false, "disable the block")
	fs.BoolVar(&opts.enable, "enable", false, "enable the block")
	fs.IntVar(&opts.newIndex, "new-index", 0, "move the block to this index")
	return cmd
}

func newRouteDelCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del TABLE INDEX",
		Short: "Delete the block at INDEX",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			if err := st.DeleteRoute(args[0], index); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted route %d from table %s\n", index, args[0])
			return nil
		},
	}
}

func newRouteDelTableCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del-table TABLE",
		Short: "Delete a whole table unless a server still uses it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			if err := st.DeleteTable(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted table %s\n", args[0])
			return nil
		},
	}
}

func newRouteUpdateDefaultCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update-default TABLE TARGET",
		Short: "Set the default route of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := ro.openStore()
			if err != nil {
				return err
			}
			if err := st.UpdateDefaultRoute(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "table %s default route is now %s\n", args[0], args[1])
			return nil
		},
	}
}
