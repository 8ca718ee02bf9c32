package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmined/agentsync/internal/assets"
)

func TestDetectConflicts_NewestFirst(t *testing.T) {
	f := newFixture(t, agentsClient("a"), agentsClient("b"))
	a := f.asset("a", assets.TypeAgents, "AGENTS.md", "foo", t0)
	b := f.asset("b", assets.TypeAgents, "AGENTS.md", "bar", t0.Add(time.Hour))

	conflicts := DetectConflicts([]*assets.Asset{a, b})
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, assets.Key{Type: assets.TypeAgents, Path: "AGENTS.md"}, c.Key)
	require.Len(t, c.Versions, 2)
	assert.Same(t, b, c.Versions[0])
	assert.Same(t, a, c.Versions[1])
	assert.Equal(t, []string{"b", "a"}, c.Clients())
	assert.False(t, c.Resolved())
}

func TestDetectConflicts_IdenticalIsNotConflict(t *testing.T) {
	f := newFixture(t, agentsClient("a"), agentsClient("b"), agentsClient("c"))
	list := []*assets.Asset{
		f.asset("a", assets.TypeAgents, "AGENTS.md", "same", t0),
		f.asset("b", assets.TypeAgents, "AGENTS.md", "same", t0.Add(time.Hour)),
		f.asset("c", assets.TypeCommands, "commands/x.md", "only one", t0),
	}
	assert.Empty(t, DetectConflicts(list))
}

func TestDetectConflicts_UnknownModTimeLastAndKeyOrder(t *testing.T) {
	f := newFixture(t, agentsClient("a"), agentsClient("b"), agentsClient("c"))
	noTime := f.asset("a", assets.TypeCommands, "commands/z.md", "v1", time.Time{})
	old := f.asset("b", assets.TypeCommands, "commands/z.md", "v2", t0)
	newer := f.asset("c", assets.TypeCommands, "commands/z.md", "v3", t0.Add(time.Minute))

	agentsA := f.asset("a", assets.TypeAgents, "AGENTS.md", "x", t0)
	agentsB := f.asset("b", assets.TypeAgents, "AGENTS.md", "y", t0)

	conflicts := DetectConflicts([]*assets.Asset{noTime, old, newer, agentsA, agentsB})
	require.Len(t, conflicts, 2)

	assert.Equal(t, assets.TypeAgents, conflicts[0].Key.Type, "sorted by type order then path")
	assert.Equal(t, []string{"a", "b"}, conflicts[0].Clients(), "equal mtimes keep input order")

	assert.Equal(t, []string{"c", "b", "a"}, conflicts[1].Clients())
}

func TestConflict_Resolve(t *testing.T) {
	f := newFixture(t, agentsClient("a"), agentsClient("b"))
	rules := DetectConflicts([]*assets.Asset{
		f.asset("a", assets.TypeRules, "rules/go.md", "x", t0),
		f.asset("b", assets.TypeRules, "rules/go.md", "y", t0),
	})[0]

	assert.ErrorIs(t, rules.Resolve(SelectVersion(2)), ErrInvalidResolution)
	assert.ErrorIs(t, rules.Resolve(SelectVersion(-1)), ErrInvalidResolution)
	assert.ErrorIs(t, rules.Resolve(MergeVersions()), ErrNotMergeable)
	assert.ErrorIs(t, rules.Resolve(Resolution{Kind: "flip-a-coin"}), ErrInvalidResolution)
	assert.False(t, rules.Resolved())

	require.NoError(t, rules.Resolve(SelectVersion(1)))
	assert.Equal(t, "select #2", rules.Resolution.String())
}

func TestConflict_Similarity(t *testing.T) {
	f := newFixture(t, agentsClient("a"), agentsClient("b"))
	c := DetectConflicts([]*assets.Asset{
		f.asset("a", assets.TypeAgents, "AGENTS.md", "alpha beta gamma", t0),
		f.asset("b", assets.TypeAgents, "AGENTS.md", "alpha beta delta", t0),
	})[0]
	assert.InDelta(t, 0.5, c.Similarity(), 1e-9)
}

func TestStrategyResolver(t *testing.T) {
	f := newFixture(t, agentsClient("a"), agentsClient("b"))
	agents := &Conflict{
		Key: assets.Key{Type: assets.TypeAgents, Path: "AGENTS.md"},
		Versions: []*assets.Asset{
			f.asset("b", assets.TypeAgents, "AGENTS.md", "new", t0.Add(time.Hour)),
			f.asset("a", assets.TypeAgents, "AGENTS.md", "old", t0),
		},
	}
	rules := &Conflict{
		Key: assets.Key{Type: assets.TypeRules, Path: "rules/go.md"},
		Versions: []*assets.Asset{
			f.asset("b", assets.TypeRules, "rules/go.md", "new", t0.Add(time.Hour)),
			f.asset("a", assets.TypeRules, "rules/go.md", "old", t0),
		},
	}

	tests := []struct {
		strategy Strategy
		conflict *Conflict
		want     Resolution
	}{
		{StrategyNewest, agents, SelectVersion(0)},
		{StrategyPriority, agents, SelectVersion(1)},
		{StrategyMerge, agents, MergeVersions()},
		{StrategyMerge, rules, SelectVersion(0)},
		{StrategyKeepBoth, rules, KeepBoth()},
		{StrategySkip, rules, SkipKey()},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy)+"/"+string(tt.conflict.Key.Type), func(t *testing.T) {
			r := NewStrategyResolver(tt.strategy, []string{"a", "b"})
			got, err := r.Resolve(context.Background(), tt.conflict)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewStrategyResolver("coin", nil).Resolve(context.Background(), agents)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestResolveAll(t *testing.T) {
	f := newFixture(t, agentsClient("a"), agentsClient("b"))
	conflicts := DetectConflicts([]*assets.Asset{
		f.asset("a", assets.TypeAgents, "AGENTS.md", "x", t0),
		f.asset("b", assets.TypeAgents, "AGENTS.md", "y", t0),
		f.asset("a", assets.TypeRules, "rules/go.md", "x", t0),
		f.asset("b", assets.TypeRules, "rules/go.md", "y", t0),
	})
	require.Len(t, conflicts, 2)
	require.NoError(t, conflicts[1].Resolve(SkipKey()))

	calls := 0
	r := ResolverFunc(func(_ context.Context, c *Conflict) (Resolution, error) {
		calls++
		return MergeVersions(), nil
	})
	require.NoError(t, ResolveAll(context.Background(), r, conflicts))
	assert.Equal(t, 1, calls, "already resolved conflicts are left alone")
	assert.Equal(t, ResolveMerge, conflicts[0].Resolution.Kind)
	assert.Equal(t, ResolveSkip, conflicts[1].Resolution.Kind)

	// resolver answers are validated
	bad := DetectConflicts([]*assets.Asset{
		f.asset("a", assets.TypeRules, "rules/x.md", "x", t0),
		f.asset("b", assets.TypeRules, "rules/x.md", "y", t0),
	})
	assert.ErrorIs(t, ResolveAll(context.Background(), r, bad), ErrNotMergeable)
}

func TestParseStrategyAndDirection(t *testing.T) {
	s, err := ParseStrategy(" Keep-Both ")
	require.NoError(t, err)
	assert.Equal(t, StrategyKeepBoth, s)
	_, err = ParseStrategy("coin")
	assert.ErrorIs(t, err, ErrInvalidOptions)

	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, DirectionSync, d)
	d, err = ParseDirection("PUSH")
	require.NoError(t, err)
	assert.Equal(t, DirectionPush, d)
	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
