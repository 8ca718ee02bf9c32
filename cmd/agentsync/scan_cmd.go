package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newScanCmd())
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the assets found in every client",
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

			found, err := a.syncer.Discover(cmd.Context())
			if err != nil {
				return err
			}
			a.printer.Assets(found)
			return nil
		},
	}
	addTypeFlag(cmd)
	return cmd
}
