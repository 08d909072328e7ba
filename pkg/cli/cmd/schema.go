package cmd

import (
	"fmt"

	"github.com/3bit-techs/vvpctl/pkg/svc/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of deployment documents",
		Long: `Print the JSON schema of deployment documents.

Editors use it for completion and validation, for example with
# yaml-language-server: $schema=./deployment.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.JSON()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			if err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}

			return nil
		},
	}
}
