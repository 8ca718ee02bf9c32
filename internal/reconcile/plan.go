package reconcile

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/clients"
	"github.com/openmined/agentsync/internal/utils"
)

// Action is what a plan entry does to its destination.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

const (
	ReasonUpToDate  = "up-to-date"
	ReasonExplicit  = "explicit-skip"
	ReasonNew       = "new"
	ReasonChanged   = "content differs"
	ReasonUntracked = "destination exists outside discovery"
)

// Entry is one prescribed file operation.
type Entry struct {
	Source *assets.Asset
	Target string
	// TargetPath is absolute and verified to lie inside the target's root.
	TargetPath string
	// TargetRel is relative to the target's type directory, slash separated.
	TargetRel string
	Action    Action
	Reason    string
	// Existing is the target's current asset at this key, if discovered.
	Existing *assets.Asset
}

// Renamed reports whether the destination path differs from the source's.
func (e *Entry) Renamed() bool {
	return e.TargetRel != e.Source.RelPath
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s %s:%s <- %s (%s)", e.Action, e.Target, e.TargetRel, e.Source.Client, e.Reason)
}

// Summary counts plan entries by action.
type Summary struct {
	Create int
	Update int
	Skip   int
}

func (s Summary) Total() int {
	return s.Create + s.Update + s.Skip
}

func (s Summary) String() string {
	return fmt.Sprintf("%d to create, %d to update, %d skipped", s.Create, s.Update, s.Skip)
}

// Plan is the ordered list of entries produced by BuildPlan.
type Plan struct {
	Options Options
	Entries []*Entry
	// SkippedKeys were dropped by a skip resolution and produce no entries.
	SkippedKeys []assets.Key
}

func (p *Plan) Summary() Summary {
	var s Summary
	for _, e := range p.Entries {
		switch e.Action {
		case ActionCreate:
			s.Create++
		case ActionUpdate:
			s.Update++
		default:
			s.Skip++
		}
	}
	return s
}

// HasChanges reports whether any entry writes.
func (p *Plan) HasChanges() bool {
	return slices.ContainsFunc(p.Entries, func(e *Entry) bool { return e.Action != ActionSkip })
}

// Exclude turns every writing entry matched by fn into an explicit skip and
// returns how many were changed.
func (p *Plan) Exclude(fn func(*Entry) bool) int {
	n := 0
	for _, e := range p.Entries {
		if e.Action != ActionSkip && fn(e) {
			e.Action = ActionSkip
			e.Reason = ReasonExplicit
			n++
		}
	}
	return n
}

// PlanInput gathers everything BuildPlan needs.
type PlanInput struct {
	// Assets is the full discovery result in client priority order.
	Assets []*assets.Asset
	// Conflicts must carry resolutions.
	Conflicts []*Conflict
	// Clients is the client table in priority order.
	Clients []*clients.Definition
	// Targets names the clients that may receive writes. Empty means all.
	Targets []string
	Options Options
}

// BuildPlan turns discovered assets and resolved conflicts into per-target entries.
// A destination outside its client root aborts planning with a *PathError.
func BuildPlan(in PlanInput) (*Plan, error) {
	opts := in.Options
	if opts.Direction == "" {
		opts.Direction = DirectionSync
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	defs := make(map[string]*clients.Definition, len(in.Clients))
	order := make(map[string]int, len(in.Clients))
	for i, d := range in.Clients {
		defs[d.Name] = d
		order[d.Name] = i
	}
	priority := func(client string) int {
		if p, ok := order[client]; ok {
			return p
		}
		return len(order)
	}

	for _, name := range []string{opts.LocalClient, opts.SourceClient} {
		if _, ok := defs[name]; name != "" && !ok {
			return nil, fmt.Errorf("%w: unknown client %q", ErrInvalidOptions, name)
		}
	}

	targets, err := selectTargets(in.Clients, defs, in.Targets, opts)
	if err != nil {
		return nil, err
	}

	desired, err := buildDesired(opts.Relevant(in.Assets), in.Assets, in.Conflicts, priority)
	if err != nil {
		return nil, err
	}

	held := indexByClient(in.Assets)
	plan := &Plan{Options: opts, SkippedKeys: desired.skipped}

	for _, target := range targets {
		for _, a := range desired.assets {
			entry, err := planEntry(target, a, held[target.Name], opts)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				plan.Entries = append(plan.Entries, entry)
			}
		}
	}

	slices.SortStableFunc(plan.Entries, func(a, b *Entry) int {
		return cmp.Or(
			cmp.Compare(priority(a.Target), priority(b.Target)),
			cmp.Compare(a.TargetPath, b.TargetPath),
		)
	})
	return plan, nil
}

func selectTargets(all []*clients.Definition, defs map[string]*clients.Definition, names []string, opts Options) ([]*clients.Definition, error) {
	for _, n := range names {
		if _, ok := defs[n]; !ok {
			return nil, fmt.Errorf("%w: unknown target %q", ErrInvalidOptions, n)
		}
	}

	var out []*clients.Definition
	for _, d := range all {
		if len(names) > 0 && !slices.Contains(names, d.Name) {
			continue
		}
		if opts.TargetAllowed(d.Name) {
			out = append(out, d)
		}
	}
	return out, nil
}

// planEntry projects one desired asset onto one target. A nil entry means the
// target does not take part for this asset.
func planEntry(target *clients.Definition, a *assets.Asset, held map[assets.Key]*assets.Asset, opts Options) (*Entry, error) {
	if !target.Supports(a.Type) {
		return nil, nil
	}
	if a.Client == target.Name && !a.Synthesized() && opts.Direction != DirectionSource {
		return nil, nil
	}

	rel := assets.NativePath(target.Layout, a.Type, a.CanonicalPath)
	abs := filepath.Join(target.TypeRoot(a.Type), filepath.FromSlash(rel))
	dest, ok := utils.WithinRoot(target.Root, abs)
	if !ok {
		return nil, &PathError{Client: target.Name, Root: target.Root, Path: abs}
	}

	entry := &Entry{
		Source:     a,
		Target:     target.Name,
		TargetPath: dest,
		TargetRel:  rel,
	}

	existing := held[a.Key()]
	switch {
	case existing != nil && existing.Fingerprint == a.Fingerprint:
		entry.Action, entry.Reason = ActionSkip, ReasonUpToDate
	case existing != nil:
		entry.Action, entry.Reason = ActionUpdate, ReasonChanged
	case utils.FileExists(dest):
		entry.Action, entry.Reason = ActionUpdate, ReasonUntracked
	default:
		entry.Action, entry.Reason = ActionCreate, ReasonNew
	}
	entry.Existing = existing
	return entry, nil
}

// indexByClient maps each client to its first asset per key.
func indexByClient(list []*assets.Asset) map[string]map[assets.Key]*assets.Asset {
	out := make(map[string]map[assets.Key]*assets.Asset)
	for _, a := range list {
		m, ok := out[a.Client]
		if !ok {
			m = make(map[assets.Key]*assets.Asset)
			out[a.Client] = m
		}
		if _, dup := m[a.Key()]; !dup {
			m[a.Key()] = a
		}
	}
	return out
}
