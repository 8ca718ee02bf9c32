package reconcile

import (
	"context"
	"fmt"
	"strings"
)

// Strategy is an automatic conflict resolution policy.
type Strategy string

const (
	StrategyNewest   Strategy = "newest"
	StrategyPriority Strategy = "priority"
	StrategyMerge    Strategy = "merge"
	StrategyKeepBoth Strategy = "keep-both"
	StrategySkip     Strategy = "skip"
)

func Strategies() []Strategy {
	return []Strategy{StrategyNewest, StrategyPriority, StrategyMerge, StrategyKeepBoth, StrategySkip}
}

func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Strategies() {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, raw)
}

// Resolver decides how a conflict is resolved. An interactive implementation
// would prompt; the built-in ones apply a fixed strategy.
type Resolver interface {
	Resolve(ctx context.Context, c *Conflict) (Resolution, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, c *Conflict) (Resolution, error)

func (f ResolverFunc) Resolve(ctx context.Context, c *Conflict) (Resolution, error) {
	return f(ctx, c)
}

// StrategyResolver resolves every conflict with one strategy. Priority is the
// client order used by StrategyPriority; unlisted clients rank last.
type StrategyResolver struct {
	Strategy Strategy
	Priority []string
}

func NewStrategyResolver(strategy Strategy, priority []string) *StrategyResolver {
	return &StrategyResolver{Strategy: strategy, Priority: priority}
}

func (r *StrategyResolver) Resolve(_ context.Context, c *Conflict) (Resolution, error) {
	switch r.Strategy {
	case StrategyNewest:
		return SelectVersion(0), nil
	case StrategyPriority:
		return SelectVersion(r.highestPriority(c)), nil
	case StrategyMerge:
		if c.Key.Type.Mergeable() {
			return MergeVersions(), nil
		}
		// nothing to merge for this type
		return SelectVersion(0), nil
	case StrategyKeepBoth:
		return KeepBoth(), nil
	case StrategySkip:
		return SkipKey(), nil
	default:
		return Resolution{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, r.Strategy)
	}
}

func (r *StrategyResolver) highestPriority(c *Conflict) int {
	best, bestRank := 0, len(r.Priority)+1
	for i, v := range c.Versions {
		rank := len(r.Priority)
		for p, name := range r.Priority {
			if name == v.Client {
				rank = p
				break
			}
		}
		if rank < bestRank {
			best, bestRank = i, rank
		}
	}
	return best
}

// ResolveAll asks r for every unresolved conflict and attaches the answer.
func ResolveAll(ctx context.Context, r Resolver, conflicts []*Conflict) error {
	for _, c := range conflicts {
		if c.Resolved() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := r.Resolve(ctx, c)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", c.Key, err)
		}
		if err := c.Resolve(res); err != nil {
			return err
		}
	}
	return nil
}
