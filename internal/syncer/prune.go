package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/openmined/agentsync/internal/apply"
	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/utils"
)

var ErrNoManifest = errors.New("no manifest store configured")

type PruneOptions struct {
	DryRun       bool
	BackupSuffix string
}

// PruneResult lists what a prune removed or would remove.
type PruneResult struct {
	DryRun bool
	// Removed are generated files whose every copy was generated, i.e. whose origin is gone.
	Removed []string
	Backups []string
	// Forgotten were recorded but no longer exist.
	Forgotten []string
	Errors    []string
}

// Prune deletes generated files that nothing but other generated files still backs.
// A recorded path is stale when every discovered asset sharing its key is itself
// recorded in the manifest. Files that were not discovered are left alone.
func (s *Syncer) Prune(ctx context.Context, opts PruneOptions) (*PruneResult, error) {
	if s.manifest == nil {
		return nil, ErrNoManifest
	}
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = apply.DefaultBackupSuffix
	}

	recorded, err := s.manifest.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list manifest: %w", err)
	}
	found, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}

	generated := mapset.NewThreadUnsafeSet(recorded...)
	byPath := make(map[string]*assets.Asset, len(found))
	holders := make(map[assets.Key][]*assets.Asset)
	for _, a := range found {
		byPath[filepath.Clean(a.AbsPath)] = a
		holders[a.Key()] = append(holders[a.Key()], a)
	}

	res := &PruneResult{DryRun: opts.DryRun}
	keep := make([]string, 0, len(recorded))
	for _, p := range recorded {
		if !utils.FileExists(p) && !utils.IsSymlink(p) {
			res.Forgotten = append(res.Forgotten, p)
			continue
		}

		a, ok := byPath[p]
		if !ok || !allGenerated(holders[a.Key()], generated) {
			keep = append(keep, p)
			continue
		}

		if opts.DryRun {
			res.Removed = append(res.Removed, p)
			keep = append(keep, p)
			continue
		}

		bak, err := removeWithBackup(p, opts.BackupSuffix)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("prune %s: %v", p, err))
			keep = append(keep, p)
			continue
		}
		if bak != "" {
			res.Backups = append(res.Backups, bak)
		}
		res.Removed = append(res.Removed, p)
		slog.Info("pruned", "client", a.Client, "path", p)
	}

	if !opts.DryRun {
		if err := s.manifest.Replace(ctx, keep); err != nil {
			return res, fmt.Errorf("update manifest: %w", err)
		}
	}
	return res, nil
}

func allGenerated(list []*assets.Asset, generated mapset.Set[string]) bool {
	return !slices.ContainsFunc(list, func(a *assets.Asset) bool {
		return !generated.Contains(filepath.Clean(a.AbsPath))
	})
}

// removeWithBackup copies a regular file aside before removing it. Links are
// removed without a backup.
func removeWithBackup(path, suffix string) (string, error) {
	var bak string
	if !utils.IsSymlink(path) && !apply.IsBackup(path, suffix) {
		bak = apply.BackupPath(path, suffix)
		if err := utils.CopyFile(path, bak); err != nil {
			return "", fmt.Errorf("backup: %w", err)
		}
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return bak, nil
}
