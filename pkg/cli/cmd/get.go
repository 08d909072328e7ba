package cmd

import (
	"errors"
	"fmt"

	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/di"
	"github.com/spf13/cobra"
)

const getLongDesc = `Print a live deployment, including the fields managed by the platform.

NAME is resolved in --namespace unless given as NAMESPACE/NAME.

Examples:
  vvpctl get orders
  vvpctl get analytics/clicks -o json`

func newGetCmd(application *app) *cobra.Command {
	output := OutputYAML

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a live deployment",
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return di.RunEWithRuntime(application.runtime, func(cmd *cobra.Command, injector di.Injector) error {
				return application.runGet(cmd, injector, args[0], output)
			})(cmd, args)
		},
	}

	cmd.Flags().VarP(&output, "output", "o", "Output format (yaml, json)")

	return cmd
}

func (a *app) runGet(cmd *cobra.Command, injector di.Injector, name string, output OutputFormat) error {
	sess, err := a.session(cmd, injector, nil)
	if err != nil {
		return err
	}

	id, err := sess.identity(name)
	if err != nil {
		return err
	}

	resource, err := sess.client.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, vvp.ErrNotFound) {
			return fmt.Errorf("deployment %s not found: %w", id, err)
		}

		return err
	}

	if output == OutputJSON {
		return printJSON(cmd.OutOrStdout(), resource.Tree)
	}

	return printYAML(cmd.OutOrStdout(), resource.Tree)
}
