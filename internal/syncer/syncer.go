package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/openmined/agentsync/internal/apply"
	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/clients"
	"github.com/openmined/agentsync/internal/discovery"
	"github.com/openmined/agentsync/internal/manifest"
	"github.com/openmined/agentsync/internal/reconcile"
)

// Options describe a single reconciliation run.
type Options struct {
	Direction    reconcile.Direction
	LocalClient  string
	SourceClient string
	// Targets limits which clients receive writes. Empty means all.
	Targets []string
	// Resolver answers conflicts; newest-wins when nil.
	Resolver reconcile.Resolver
	// Exclude holds doublestar patterns matched against an entry's target-relative path.
	Exclude      []string
	DryRun       bool
	Link         bool
	BackupSuffix string
}

func (o Options) planOptions() reconcile.Options {
	return reconcile.Options{
		Direction:    o.Direction,
		LocalClient:  o.LocalClient,
		SourceClient: o.SourceClient,
	}
}

// Run collects everything a reconciliation produced, for reporting.
type Run struct {
	Assets    []*assets.Asset
	Conflicts []*reconcile.Conflict
	Plan      *reconcile.Plan
	// Result is nil until the plan is applied.
	Result   *apply.Result
	Started  time.Time
	Finished time.Time
}

func (r *Run) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Syncer wires discovery, conflict resolution, planning and apply together.
type Syncer struct {
	table    *clients.Table
	scanner  *discovery.Scanner
	manifest manifest.Store
}

// New builds a Syncer. store may be nil, in which case written files are not recorded
// and Prune has nothing to work from.
func New(table *clients.Table, scanner *discovery.Scanner, store manifest.Store) *Syncer {
	if scanner == nil {
		scanner = discovery.NewScanner(table.All())
	}
	return &Syncer{table: table, scanner: scanner, manifest: store}
}

func (s *Syncer) Table() *clients.Table {
	return s.table
}

// Discover scans every client.
func (s *Syncer) Discover(ctx context.Context) ([]*assets.Asset, error) {
	return s.scanner.Scan(ctx)
}

// Conflicts discovers assets and detects conflicts among those the options let
// feed the desired state. Nothing is resolved.
func (s *Syncer) Conflicts(ctx context.Context, opts Options) (*Run, error) {
	run := &Run{Started: time.Now()}
	defer func() { run.Finished = time.Now() }()

	if err := opts.planOptions().Validate(); err != nil {
		return nil, err
	}

	found, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}
	run.Assets = found
	run.Conflicts = reconcile.DetectConflicts(opts.planOptions().Relevant(found))
	return run, nil
}

// Plan discovers, resolves every conflict and builds the plan without applying it.
func (s *Syncer) Plan(ctx context.Context, opts Options) (*Run, error) {
	run, err := s.Conflicts(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer func() { run.Finished = time.Now() }()

	resolver := opts.Resolver
	if resolver == nil {
		resolver = reconcile.NewStrategyResolver(reconcile.StrategyNewest, nil)
	}
	if err := reconcile.ResolveAll(ctx, resolver, run.Conflicts); err != nil {
		return nil, err
	}

	plan, err := reconcile.BuildPlan(reconcile.PlanInput{
		Assets:    run.Assets,
		Conflicts: run.Conflicts,
		Clients:   s.table.All(),
		Targets:   opts.Targets,
		Options:   opts.planOptions(),
	})
	if err != nil {
		return nil, err
	}

	if len(opts.Exclude) > 0 {
		n := plan.Exclude(func(e *reconcile.Entry) bool { return excluded(opts.Exclude, e.TargetRel) })
		slog.Debug("plan exclude", "patterns", opts.Exclude, "entries", n)
	}

	run.Plan = plan
	slog.Info("plan", "assets", len(run.Assets), "conflicts", len(run.Conflicts), "summary", plan.Summary().String())
	return run, nil
}

// Sync plans and applies. The run is returned even when apply fails so the caller
// can report outcomes; the error then wraps apply.ErrApplyFailed.
func (s *Syncer) Sync(ctx context.Context, opts Options) (*Run, error) {
	run, err := s.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}

	engine := apply.NewEngine(apply.Options{
		DryRun:       opts.DryRun,
		Link:         opts.Link,
		BackupSuffix: opts.BackupSuffix,
		Manifest:     s.manifest,
	})
	run.Result = engine.Apply(ctx, run.Plan)
	run.Finished = time.Now()

	slog.Info("sync", "run", run.Result.RunID, "result", run.Result.String(), "took", run.Duration())
	if err := run.Result.Err(); err != nil {
		return run, fmt.Errorf("sync: %w", err)
	}
	return run, nil
}

func excluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
