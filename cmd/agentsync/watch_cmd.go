package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/openmined/agentsync/internal/apply"
	"github.com/openmined/agentsync/internal/clients"
	"github.com/openmined/agentsync/internal/syncer"
	"github.com/openmined/agentsync/internal/utils"
	"github.com/openmined/agentsync/internal/watch"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync once, then again whenever a client's assets change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, appOptions{writes: true})
			if err != nil {
				return err
			}
			defer a.Close()

			opts, err := a.syncOptions(cmd)
			if err != nil {
				return err
			}

			roots := watchRoots(a.table)
			if len(roots) == 0 {
				return errors.New("no client directory exists yet, nothing to watch")
			}

			w := watch.NewWatcher(roots...)
			if d, _ := cmd.Flags().GetDuration("debounce"); d > 0 {
				w.SetDebounceTimeout(d)
			}
			w.FilterPaths(watch.PathFilter(roots, a.ignore, a.cfg.BackupSuffix))

			ctx := cmd.Context()
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer w.Stop()

			run := syncRunner(a, opts)
			written, err := run(ctx, nil)
			for _, p := range written {
				w.IgnoreOnce(p)
			}
			if err != nil && !errors.Is(err, apply.ErrApplyFailed) {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cyan.Render("watching"), len(roots), "client directories", gray.Render("(ctrl+c to stop)"))
			return watch.Loop(ctx, w, run)
		},
	}
	addSyncFlags(cmd)
	addWriteFlags(cmd)
	cmd.Flags().Duration("debounce", watch.DefaultDebounceTimeout, "quiet period before a change triggers a sync")
	return cmd
}

// syncRunner runs one sync per batch and reports the paths it wrote, backups
// included, so the watcher does not react to them.
func syncRunner(a *app, opts syncer.Options) watch.RunFunc {
	return func(ctx context.Context, changed []string) ([]string, error) {
		if len(changed) > 0 {
			slog.Debug("watch sync", "changed", changed)
		}
		started := time.Now()

		run, err := a.syncer.Sync(ctx, opts)
		if run == nil {
			return nil, err
		}
		if run.Plan.HasChanges() || err != nil {
			a.printer.Run(run, false)
		} else {
			slog.Info("up to date", "took", time.Since(started))
		}
		if run.Result == nil {
			return nil, err
		}
		return append(run.Result.Written(), run.Result.Backups...), err
	}
}

// watchRoots returns the existing client roots, dropping roots nested in another.
func watchRoots(t *clients.Table) []string {
	var roots []string
	for _, d := range t.All() {
		if utils.DirExists(d.Root) && !slices.Contains(roots, d.Root) {
			roots = append(roots, d.Root)
		}
	}
	slices.Sort(roots)

	var out []string
	for _, r := range roots {
		nested := slices.ContainsFunc(out, func(parent string) bool {
			_, inside := utils.WithinRoot(parent, r)
			return inside
		})
		if !nested {
			out = append(out, r)
		}
	}
	return out
}
