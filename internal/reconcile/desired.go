package reconcile

import (
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/mcpconfig"
)

// MergeSeparator joins agent instructions merged by concatenation.
const MergeSeparator = "\n\n---\n\n"

// desiredSet is the content every target should end up holding, one asset per key.
type desiredSet struct {
	assets  []*assets.Asset
	skipped []assets.Key
	// claimed maps each key in assets to its fingerprint.
	claimed map[assets.Key]string
}

// add appends a unless its key is already taken. The first claim wins.
func (d *desiredSet) add(a *assets.Asset) {
	if _, ok := d.claimed[a.Key()]; ok {
		return
	}
	d.claimed[a.Key()] = a.Fingerprint
	d.assets = append(d.assets, a)
}

// buildDesired resolves every key of relevant into a single desired asset.
// all is the complete discovery result, used to avoid keep-both name collisions.
func buildDesired(relevant, all []*assets.Asset, conflicts []*Conflict, priority func(string) int) (*desiredSet, error) {
	byKey := make(map[assets.Key]*Conflict, len(conflicts))
	for _, c := range conflicts {
		byKey[c.Key] = c
	}

	_, existing := groupByKey(all)
	keys, groups := groupByKey(relevant)
	out := &desiredSet{claimed: make(map[assets.Key]string)}

	// Renamed copies are placed first so a file written by an earlier keep-both
	// run does not push the derived name to a numbered variant.
	for _, k := range keys {
		c, conflicted := byKey[k]
		if !conflicted || c.Resolution == nil || c.Resolution.Kind != ResolveKeepBoth {
			continue
		}
		for _, v := range c.Versions {
			renamed := keepBothKey(v, existing, out.claimed)
			out.add(v.WithCanonicalPath(renamed.Path))
		}
	}

	for _, k := range keys {
		c, conflicted := byKey[k]
		if !conflicted {
			group := slices.Clone(groups[k])
			slices.SortStableFunc(group, func(a, b *assets.Asset) int { return priority(a.Client) - priority(b.Client) })
			out.add(group[0])
			continue
		}

		if c.Resolution == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedConflict, k)
		}

		switch c.Resolution.Kind {
		case ResolveSkip:
			out.skipped = append(out.skipped, k)

		case ResolveSelect:
			if c.Resolution.Index < 0 || c.Resolution.Index >= len(c.Versions) {
				return nil, fmt.Errorf("%w: %s index %d", ErrInvalidResolution, k, c.Resolution.Index)
			}
			out.add(c.Versions[c.Resolution.Index])

		case ResolveMerge:
			merged, err := mergeVersions(c)
			if err != nil {
				return nil, err
			}
			out.add(merged)

		case ResolveKeepBoth:
			// placed above

		default:
			return nil, fmt.Errorf("%w: %s kind %q", ErrInvalidResolution, k, c.Resolution.Kind)
		}
	}
	return out, nil
}

// mergeVersions synthesizes one asset from all versions. The result keeps the
// first version's metadata and has no backing file.
func mergeVersions(c *Conflict) (*assets.Asset, error) {
	var content string
	switch c.Key.Type {
	case assets.TypeMCP:
		merged, ok := mcpconfig.MergeAssets(c.Versions)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no versions", ErrInvalidResolution, c.Key)
		}
		content = merged
	case assets.TypeAgents:
		parts := make([]string, len(c.Versions))
		for i, v := range c.Versions {
			parts[i] = strings.TrimRight(v.Content, "\n")
		}
		content = strings.Join(parts, MergeSeparator) + "\n"
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotMergeable, c.Key)
	}
	return c.Versions[0].WithContent(content), nil
}

// keepBothKey derives `<stem>.<client><ext>` for v. If that key is already held
// or claimed with different content, a numeric suffix is appended until the key
// is free. Content identical to v does not count as a collision, so a rerun
// reuses the name it wrote before.
func keepBothKey(v *assets.Asset, existing map[assets.Key][]*assets.Asset, claimed map[assets.Key]string) assets.Key {
	taken := func(k assets.Key) bool {
		if fp, ok := claimed[k]; ok && fp != v.Fingerprint {
			return true
		}
		for _, a := range existing[k] {
			if a.Fingerprint != v.Fingerprint {
				return true
			}
		}
		return false
	}

	key := assets.Key{Type: v.Type, Path: clientSuffixedPath(v.CanonicalPath, v.Client, 1)}
	for n := 2; taken(key); n++ {
		key.Path = clientSuffixedPath(v.CanonicalPath, v.Client, n)
	}
	return key
}

// clientSuffixedPath inserts the client name before the extension, or appends it
// when there is none. n > 1 adds a `-n` counter.
func clientSuffixedPath(canonical, client string, n int) string {
	dir, base := path.Split(canonical)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// dotfile such as ".env": the whole name is the stem
		stem, ext = base, ""
	}

	suffix := client
	if n > 1 {
		suffix += "-" + strconv.Itoa(n)
	}
	return dir + stem + "." + suffix + ext
}
