package reconcile

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/openmined/agentsync/internal/assets"
)

// ResolutionKind is the decision attached to a conflict.
type ResolutionKind string

const (
	ResolveSelect   ResolutionKind = "select"
	ResolveMerge    ResolutionKind = "merge"
	ResolveKeepBoth ResolutionKind = "keep-both"
	ResolveSkip     ResolutionKind = "skip"
)

// Resolution says how a conflict turns into desired content.
type Resolution struct {
	Kind ResolutionKind
	// Index is the chosen version for ResolveSelect.
	Index int
}

func SelectVersion(i int) Resolution { return Resolution{Kind: ResolveSelect, Index: i} }
func MergeVersions() Resolution      { return Resolution{Kind: ResolveMerge} }
func KeepBoth() Resolution           { return Resolution{Kind: ResolveKeepBoth} }
func SkipKey() Resolution            { return Resolution{Kind: ResolveSkip} }

func (r Resolution) String() string {
	if r.Kind == ResolveSelect {
		return fmt.Sprintf("select #%d", r.Index+1)
	}
	return string(r.Kind)
}

// Conflict is a canonical key whose versions differ in content.
type Conflict struct {
	Key assets.Key
	// Versions are newest first; versions with no known mtime come last.
	Versions   []*assets.Asset
	Resolution *Resolution
}

// Resolve validates r against the conflict and attaches it.
func (c *Conflict) Resolve(r Resolution) error {
	switch r.Kind {
	case ResolveSelect:
		if r.Index < 0 || r.Index >= len(c.Versions) {
			return fmt.Errorf("%w: %s has %d versions, got index %d", ErrInvalidResolution, c.Key, len(c.Versions), r.Index)
		}
	case ResolveMerge:
		if !c.Key.Type.Mergeable() {
			return fmt.Errorf("%w: %s", ErrNotMergeable, c.Key)
		}
	case ResolveKeepBoth, ResolveSkip:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidResolution, r.Kind)
	}
	c.Resolution = &r
	return nil
}

func (c *Conflict) Resolved() bool {
	return c.Resolution != nil
}

// Clients lists the owning client of every version, newest first.
func (c *Conflict) Clients() []string {
	out := make([]string, len(c.Versions))
	for i, v := range c.Versions {
		out[i] = v.Client
	}
	return out
}

// Similarity scores the two newest versions. It is advisory only.
func (c *Conflict) Similarity() float64 {
	if len(c.Versions) < 2 {
		return 1
	}
	return assets.Similarity(c.Versions[0].Content, c.Versions[1].Content)
}

// DetectConflicts groups assets by canonical key and reports every key held with
// more than one distinct fingerprint. Byte-identical copies are not conflicts.
// The result is sorted by key.
func DetectConflicts(list []*assets.Asset) []*Conflict {
	keys, groups := groupByKey(list)

	var conflicts []*Conflict
	for _, k := range keys {
		group := groups[k]
		if !hasDistinctContent(group) {
			continue
		}
		versions := slices.Clone(group)
		slices.SortStableFunc(versions, newestFirst)
		conflicts = append(conflicts, &Conflict{Key: k, Versions: versions})
	}

	slices.SortFunc(conflicts, func(a, b *Conflict) int { return compareKeys(a.Key, b.Key) })
	return conflicts
}

// groupByKey returns keys in first-seen order and their assets in input order.
func groupByKey(list []*assets.Asset) ([]assets.Key, map[assets.Key][]*assets.Asset) {
	var keys []assets.Key
	groups := make(map[assets.Key][]*assets.Asset)
	for _, a := range list {
		k := a.Key()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], a)
	}
	return keys, groups
}

func hasDistinctContent(group []*assets.Asset) bool {
	for _, a := range group[1:] {
		if a.Fingerprint != group[0].Fingerprint {
			return true
		}
	}
	return false
}

func newestFirst(a, b *assets.Asset) int {
	switch {
	case a.HasModTime() && !b.HasModTime():
		return -1
	case !a.HasModTime() && b.HasModTime():
		return 1
	}
	return b.ModTime.Compare(a.ModTime)
}

func compareKeys(a, b assets.Key) int {
	return cmp.Or(
		cmp.Compare(a.Type.Order(), b.Type.Order()),
		cmp.Compare(a.Path, b.Path),
	)
}
