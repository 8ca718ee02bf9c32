package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPlanCmd())
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a sync would write, without touching any file",
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
			run, err := a.syncer.Plan(cmd.Context(), opts)
			if err != nil {
				return err
			}

			showDiff, _ := cmd.Flags().GetBool("diff")
			a.printer.Plan(run.Plan, showDiff)
			return nil
		},
	}
	addSyncFlags(cmd)
	addTypeFlag(cmd)
	cmd.Flags().Bool("diff", false, "show a line diff for every update")
	return cmd
}
