package main

import (
	"fmt"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/reconcile"
	"github.com/openmined/agentsync/internal/syncer"
	"github.com/spf13/cobra"
)

// addSyncFlags registers the flags shared by conflicts, plan, sync and watch.
func addSyncFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.SortFlags = false
	f.StringP("direction", "d", string(reconcile.DirectionSync), "push, pull, sync or source")
	f.String("local", "", "local client for push and pull (default \"project\")")
	f.String("source", "", "client mirrored onto the targets; implies --direction source")
	f.StringSliceP("targets", "t", nil, "clients that receive writes (default all)")
	f.StringP("strategy", "s", "", "conflict strategy: newest, priority, merge, keep-both or skip")
	f.StringSlice("priority", nil, "client order for the priority strategy (default client table order)")
	f.StringSliceP("exclude", "x", nil, "glob of target paths to leave alone, e.g. 'commands/draft/**'")
}

func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("dry-run", "n", false, "report what would change without writing")
	cmd.Flags().Bool("link", false, "symlink targets to the winning file instead of copying")
}

func addTypeFlag(cmd *cobra.Command) {
	cmd.Flags().StringSlice("type", nil, "limit discovery to asset types (agents, commands, rules, skills, mcp, prompts)")
}

func typesFromFlags(cmd *cobra.Command) ([]assets.AssetType, error) {
	raw, _ := cmd.Flags().GetStringSlice("type")
	types := make([]assets.AssetType, 0, len(raw))
	for _, r := range raw {
		t, err := assets.ParseAssetType(r)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// syncOptions turns flags and config into syncer options.
func (a *app) syncOptions(cmd *cobra.Command) (syncer.Options, error) {
	f := cmd.Flags()
	rawDirection, _ := f.GetString("direction")
	source, _ := f.GetString("source")
	targets, _ := f.GetStringSlice("targets")
	exclude, _ := f.GetStringSlice("exclude")
	dryRun, _ := f.GetBool("dry-run")

	direction, err := reconcile.ParseDirection(rawDirection)
	if err != nil {
		return syncer.Options{}, err
	}
	if source != "" && !f.Changed("direction") {
		direction = reconcile.DirectionSource
	}

	names := append([]string{source}, targets...)
	if direction == reconcile.DirectionPush || direction == reconcile.DirectionPull {
		names = append(names, a.cfg.LocalClient)
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := a.table.Get(name); !ok {
			return syncer.Options{}, fmt.Errorf("%w: unknown client %q (known: %v)", reconcile.ErrInvalidOptions, name, a.table.Names())
		}
	}

	strategy := reconcile.StrategyNewest
	if a.cfg.Strategy != "" {
		if strategy, err = reconcile.ParseStrategy(a.cfg.Strategy); err != nil {
			return syncer.Options{}, err
		}
	}
	priority := a.cfg.Priority
	if len(priority) == 0 {
		priority = a.table.Names()
	}

	return syncer.Options{
		Direction:    direction,
		LocalClient:  a.cfg.LocalClient,
		SourceClient: source,
		Targets:      targets,
		Resolver:     reconcile.NewStrategyResolver(strategy, priority),
		Exclude:      exclude,
		DryRun:       dryRun,
		Link:         a.cfg.Link,
		BackupSuffix: a.cfg.BackupSuffix,
	}, nil
}
