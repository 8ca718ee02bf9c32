package main

import (
	"github.com/openmined/agentsync/internal/syncer"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPruneCmd())
}

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove files agentsync generated whose origin no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, appOptions{writes: true})
			if err != nil {
				return err
			}
			defer a.Close()

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			res, err := a.syncer.Prune(cmd.Context(), syncer.PruneOptions{
				DryRun:       dryRun,
				BackupSuffix: a.cfg.BackupSuffix,
			})
			if err != nil {
				return err
			}
			a.printer.Prune(res)
			return nil
		},
	}
	cmd.Flags().BoolP("dry-run", "n", false, "report what would be removed")
	return cmd
}
