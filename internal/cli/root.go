// Package cli implements the bbs-admin command tree. Every invocation is a
// single operation against the routing configuration: load the document, run
// one mutation or query, persist, exit. Concurrent invocations against the
// same document race last-writer-wins; there is no daemon and no lock.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/internal/config"
	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
)

type rootOptions struct {
	settingsPath string
	docPath      string
	noColor      bool
	noBackup     bool
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "bbs-admin",
		Short:         "Manage a bbs proxy routing configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.docPath, "config", "c", "", "routing configuration file (default from settings, BBS_CONFIG, or the user config dir)")
	fs.StringVar(&opts.settingsPath, "settings", "", "settings yaml path (default <user config dir>/bbs/admin.yaml)")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable styled output")
	fs.BoolVar(&opts.noBackup, "no-backup", false, "do not write a .bak copy before saving")

	cmd.AddCommand(
		newShowCmd(opts),
		newProxyCmd(opts),
		newChainCmd(opts),
		newServerCmd(opts),
		newHostCmd(opts),
		newRouteCmd(opts),
		newCheckCmd(opts),
		newTUICmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) loadSettings() (config.Settings, error) {
	path := o.settingsPath
	if path == "" {
		path = config.DefaultSettingsPath()
	}
	return config.Load(path)
}

// documentPath resolves in order: --config flag, settings / BBS_CONFIG,
// then the per-user default location.
func (o *rootOptions) documentPath(settings config.Settings) string {
	if o.docPath != "" {
		return o.docPath
	}
	if settings.ConfigFile != "" {
		return settings.ConfigFile
	}
	return config.DefaultDocumentPath()
}

func (o *rootOptions) openStore() (*routeconf.Store, config.Settings, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return nil, config.Settings{}, err
	}
	st, err := routeconf.Load(o.documentPath(settings))
	if err != nil {
		return nil, config.Settings{}, err
	}
	st.Backup = settings.Backup && !o.noBackup
	st.Logf = func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	return st, settings, nil
}

func (o *rootOptions) useColor(settings config.Settings) bool {
	if o.noColor {
		return false
	}
	switch settings.Color {
	case "always":
		return true
	case "never":
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
