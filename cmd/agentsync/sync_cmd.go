package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile assets across clients and write the result",
		Long: `Discovers every client's assets, resolves conflicting versions with the chosen
strategy and writes each target in its native layout. Existing files are backed up
before they are overwritten, and a failed write rolls back everything the run changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := typesFromFlags(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, appOptions{writes: true, types: types})
			if err != nil {
				return err
			}
			defer a.Close()

			opts, err := a.syncOptions(cmd)
			if err != nil {
				return err
			}

			run, err := a.syncer.Sync(cmd.Context(), opts)
			if run != nil {
				showDiff, _ := cmd.Flags().GetBool("diff")
				a.printer.Run(run, showDiff)
			}
			return err
		},
	}
	addSyncFlags(cmd)
	addWriteFlags(cmd)
	addTypeFlag(cmd)
	cmd.Flags().Bool("diff", false, "show a line diff for every update")
	return cmd
}
