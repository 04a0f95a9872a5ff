package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetsync/internal/sheetsapi"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the service account can reach both spreadsheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromViper()
			if err != nil {
				return err
			}

			api, err := sheetsapi.New(&sheetsapi.Config{CredentialsFile: cfg.CredentialsFile})
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true
			for _, target := range []struct{ label, id string }{
				{"source", cfg.SourceSpreadsheetID},
				{"destination", cfg.DestSpreadsheetID},
			} {
				title, err := api.Probe(cmd.Context(), target.id)
				if err != nil {
					return fmt.Errorf("%s spreadsheet: %w", target.label, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %q ok\n", target.label, title)
			}
			return nil
		},
	}
}
