package manifest

import (
	"context"
	"errors"
	"path/filepath"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

var ErrStoreClosed = errors.New("manifest store is closed")

// Store records the files written by previous runs so stale outputs can be pruned.
// Paths are absolute and cleaned; List returns them sorted.
type Store interface {
	List(ctx context.Context) ([]string, error)
	Replace(ctx context.Context, paths []string) error
	Clear(ctx context.Context) error
}

// Add merges paths into what the store already holds.
func Add(ctx context.Context, s Store, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	current, err := s.List(ctx)
	if err != nil {
		return err
	}
	return s.Replace(ctx, append(current, paths...))
}

// Remove drops paths from the store.
func Remove(ctx context.Context, s Store, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	current, err := s.List(ctx)
	if err != nil {
		return err
	}
	drop := mapset.NewThreadUnsafeSet(normalize(paths)...)
	kept := slices.DeleteFunc(current, func(p string) bool { return drop.Contains(p) })
	return s.Replace(ctx, kept)
}

// normalize cleans, dedupes and sorts paths.
func normalize(paths []string) []string {
	seen := mapset.NewThreadUnsafeSetWithSize[string](len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		seen.Add(filepath.Clean(p))
	}
	out := seen.ToSlice()
	slices.Sort(out)
	return out
}
