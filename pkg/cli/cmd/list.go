package cmd

import (
	"github.com/3bit-techs/vvpctl/pkg/di"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/spf13/cobra"
)

const listLongDesc = `List the deployments of --namespace.

Examples:
  vvpctl list
  vvpctl list -n analytics -o yaml`

func newListCmd(application *app) *cobra.Command {
	output := OutputTable

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live deployments",
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: di.RunEWithRuntime(application.runtime, func(cmd *cobra.Command, injector di.Injector) error {
			return application.runList(cmd, injector, output)
		}),
	}

	cmd.Flags().VarP(&output, "output", "o", "Output format (table, yaml, json)")

	return cmd
}

func (a *app) runList(cmd *cobra.Command, injector di.Injector, output OutputFormat) error {
	sess, err := a.session(cmd, injector, nil)
	if err != nil {
		return err
	}

	resources, err := sess.client.List(cmd.Context(), sess.config.Namespace)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch output {
	case OutputYAML, OutputJSON:
		items := make([]tree.Tree, 0, len(resources))
		for _, resource := range resources {
			items = append(items, resource.Tree)
		}

		list := map[string]any{"items": items}
		if output == OutputJSON {
			return printJSON(out, list)
		}

		return printYAML(out, list)
	default:
		if len(resources) == 0 {
			notify.Infof(out, "no deployments found in namespace %s", sess.config.Namespace)

			return nil
		}

		return printTable(out, resources)
	}
}
