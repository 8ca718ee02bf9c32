package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/openmined/agentsync/internal/apply"
	"github.com/openmined/agentsync/internal/discovery"
	"github.com/openmined/agentsync/internal/utils"
)

// RunFunc performs one reconciliation for a batch of changed paths and returns
// the paths it wrote itself.
type RunFunc func(ctx context.Context, changed []string) ([]string, error)

// Loop calls fn for every batch until ctx is done. Paths written by fn are ignored
// once so a run does not trigger itself. Errors from fn are logged and the loop
// keeps going.
func Loop(ctx context.Context, w *Watcher, fn RunFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Batches():
			if !ok {
				return nil
			}
			slog.Info("change detected", "paths", len(batch), "first", batch[0])

			written, err := fn(ctx, batch)
			for _, p := range written {
				w.IgnoreOnce(p)
			}
			if err != nil {
				slog.Error("watch run failed", "error", err)
			}
		}
	}
}

// PathFilter drops events for in-flight temp files, backups, and anything the
// ignore list excludes relative to the root that contains it.
func PathFilter(roots []string, ignore *discovery.IgnoreList, backupSuffix string) FilterCallback {
	if backupSuffix == "" {
		backupSuffix = apply.DefaultBackupSuffix
	}
	return func(path string) bool {
		if strings.HasPrefix(filepath.Base(path), apply.TempPrefix) || apply.IsBackup(path, backupSuffix) {
			return true
		}
		if ignore == nil {
			return false
		}
		for _, root := range roots {
			if _, ok := utils.WithinRoot(root, path); !ok {
				continue
			}
			if rel, err := filepath.Rel(root, path); err == nil {
				return ignore.ShouldIgnore(filepath.ToSlash(rel))
			}
		}
		return false
	}
}
