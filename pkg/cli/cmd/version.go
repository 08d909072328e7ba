package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of vvpctl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "vvpctl %s\ncommit: %s\nbuilt:  %s\n", version, commit, date)
			if err != nil {
				return fmt.Errorf("failed to write version: %w", err)
			}

			return nil
		},
	}
}
