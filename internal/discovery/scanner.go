package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/clients"
	"github.com/openmined/agentsync/internal/utils"
)

// Scanner discovers assets across client directories. It never writes.
type Scanner struct {
	clients     []*clients.Definition
	ignore      *IgnoreList
	cache       *ReadCache
	types       mapset.Set[assets.AssetType]
	concurrency int
}

type Option func(*Scanner)

// WithIgnore sets the ignore list. The default compiles only the built-in rules.
func WithIgnore(l *IgnoreList) Option {
	return func(s *Scanner) { s.ignore = l }
}

// WithCache reuses file contents between scans.
func WithCache(c *ReadCache) Option {
	return func(s *Scanner) { s.cache = c }
}

// WithTypes restricts discovery to the given asset types.
func WithTypes(types ...assets.AssetType) Option {
	return func(s *Scanner) {
		if len(types) > 0 {
			s.types = mapset.NewThreadUnsafeSet(types...)
		}
	}
}

// WithConcurrency bounds the number of files read at once.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewScanner(defs []*clients.Definition, opts ...Option) *Scanner {
	s := &Scanner{
		clients:     defs,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ignore == nil {
		s.ignore = NewIgnoreList("")
	}
	return s
}

// candidate is one file to read, in output order.
type candidate struct {
	client *clients.Definition
	atype  assets.AssetType
	base   string
	rel    string
}

// Scan returns every readable asset in client table order, then type order, then
// relative path. Missing roots and unreadable files are skipped, not errors.
func (s *Scanner) Scan(ctx context.Context) ([]*assets.Asset, error) {
	candidates := s.candidates()

	results := make([]*assets.Asset, len(candidates))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	for i, c := range candidates {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			a, err := s.read(c)
			if err != nil {
				slog.Warn("discovery skip", "client", c.client.Name, "path", filepath.Join(c.base, c.rel), "error", err)
				return nil
			}
			results[i] = a
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	found := make([]*assets.Asset, 0, len(results))
	for _, a := range results {
		if a != nil {
			found = append(found, a)
		}
	}
	slog.Debug("discovery complete", "clients", len(s.clients), "candidates", len(candidates), "assets", len(found))
	return found, nil
}

func (s *Scanner) candidates() []candidate {
	var out []candidate

	for _, def := range s.clients {
		if !utils.DirExists(def.Root) {
			slog.Debug("client root missing", "client", def.Name, "root", def.Root)
			continue
		}

		for _, t := range def.Types() {
			if s.types != nil && !s.types.Contains(t) {
				continue
			}
			base := def.TypeRoot(t)
			spec, _ := def.Spec(t)
			rels := s.expand(def.Name, base, spec)
			for _, rel := range rels {
				out = append(out, candidate{client: def, atype: t, base: base, rel: rel})
			}
		}
	}
	return out
}

// expand resolves patterns and explicit files into sorted, de-duplicated
// relative paths under base.
func (s *Scanner) expand(client, base string, spec clients.AssetSpec) []string {
	if !utils.DirExists(base) {
		return nil
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	fsys := os.DirFS(base)

	for _, pattern := range spec.Patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			slog.Warn("bad pattern", "client", client, "pattern", pattern, "error", err)
			continue
		}
		for _, m := range matches {
			seen.Add(m)
		}
	}

	for _, f := range spec.Files {
		rel := assets.NormPath(f)
		if rel != "" && utils.FileExists(filepath.Join(base, filepath.FromSlash(rel))) {
			seen.Add(rel)
		}
	}

	rels := seen.ToSlice()
	rels = slices.DeleteFunc(rels, s.ignore.ShouldIgnore)
	slices.Sort(rels)
	return rels
}

var errNotText = errors.New("not utf-8 text")

func (s *Scanner) read(c candidate) (*assets.Asset, error) {
	abs := filepath.Join(c.base, filepath.FromSlash(c.rel))

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file", fs.ErrInvalid)
	}

	content, ok := "", false
	if s.cache != nil {
		content, ok = s.cache.Get(abs, info)
	}
	if !ok {
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(data) {
			return nil, errNotText
		}
		content = string(data)
		if s.cache != nil {
			s.cache.Put(abs, info, content)
		}
	}

	var meta *assets.Metadata
	if c.atype == assets.TypeRules && c.client.Layout.CursorRules {
		meta = ruleMetadata(content)
	}

	return assets.New(c.client.Name, c.client.Layout, c.atype, abs, c.rel, content, info.ModTime(), meta), nil
}
