package main

import (
	"github.com/openmined/agentsync/internal/reconcile"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConflictsCmd())
}

func newConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Show assets whose versions differ between clients and how the strategy resolves them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := typesFromFlags(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, appOptions{types: types})
			if err != nil {
				return err
			}
			defer a.Close()

			opts, err := a.syncOptions(cmd)
			if err != nil {
				return err
			}
			run, err := a.syncer.Conflicts(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := reconcile.ResolveAll(cmd.Context(), opts.Resolver, run.Conflicts); err != nil {
				return err
			}
			a.printer.Conflicts(run.Conflicts)
			return nil
		},
	}
	addSyncFlags(cmd)
	addTypeFlag(cmd)
	return cmd
}
