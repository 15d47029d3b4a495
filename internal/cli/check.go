package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
)

type checkOptions struct {
	watch bool
}

func newCheckCmd(ro *rootOptions) *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the document: dangling targets, bad subnets, shadowed rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, settings, err := ro.openStore()
			if err != nil {
				return err
			}
			pal := newPalette(ro.useColor(settings))
			if opts.watch {
				debounce := time.Duration(settings.WatchDebounceMs) * time.Millisecond
				return watchAndCheck(cmd.Context(), st.Path(), debounce)
			}
			return runCheck(cmd.OutOrStdout(), pal, st)
		},
	}
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-validate whenever the document changes")
	return cmd
}

func runCheck(w io.Writer, pal palette, st *routeconf.Store) error {
	issues := st.Check()
	for _, issue := range issues {
		fmt.Fprintln(w, pal.warn.Render(issue.String()))
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	fmt.Fprintln(w, pal.dim.Render("no issues"))
	return nil
}

// watchAndCheck re-validates the document on every change until interrupted.
// The parent directory is watched because saves replace the file by rename.
// Issues are logged rather than terminating the loop.
func watchAndCheck(parent context.Context, path string, debounce time.Duration) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	recheck := func() {
		st, err := routeconf.Load(path)
		if err != nil {
			log.Printf("check failed: %v", err)
			return
		}
		issues := st.Check()
		if len(issues) == 0 {
			log.Printf("check ok: %s", path)
			return
		}
		for _, issue := range issues {
			log.Printf("check: %s", issue)
		}
	}

	log.Printf("watching %s (debounce %s)", path, debounce)
	recheck()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-timerC:
			timerC = nil
			recheck()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldRecheck(evt, path) {
				resetTimer()
			}
		}
	}
}

func shouldRecheck(evt fsnotify.Event, path string) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(evt.Name) == filepath.Base(path)
}
