package main

import (
	"github.com/openmined/agentsync/internal/clients"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newClientsCmd())
}

func newClientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List the configured clients in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
				out, err := clients.Marshal(a.table)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			a.printer.Clients(a.table)
			return nil
		},
	}
	cmd.Flags().Bool("yaml", false, "print the effective table in clients.yaml format")
	return cmd
}
