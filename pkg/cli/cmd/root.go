package cmd

import (
	"fmt"

	"github.com/3bit-techs/vvpctl/pkg/cli/ui/errorhandler"
	"github.com/3bit-techs/vvpctl/pkg/di"
	configmanager "github.com/3bit-techs/vvpctl/pkg/io/config-manager/vvpctl"
	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/spf13/cobra"
)

// NoColorFlagName disables colored output.
const NoColorFlagName = "no-color"

const rootLongDesc = `vvpctl reconciles Ververica Platform deployments with documents kept in
version control.

Documents are YAML, JSON or TOML files describing the desired state of a
deployment. apply fetches the live deployment, computes a structural diff and
issues the create or patch calls needed to converge; running it again without
changes does nothing.

Configuration is read from --config, vvpctl.yaml in the working directory or
~/.vvpctl/, VVPCTL_* environment variables and flags, in increasing priority.`

// NewRootCmd creates the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	return NewRootCmdWithRuntime(di.NewRuntime(), version, commit, date)
}

// NewRootCmdWithRuntime creates the root command resolving dependencies from runtime.
func NewRootCmdWithRuntime(runtime *di.Runtime, version, commit, date string) *cobra.Command {
	application := &app{
		runtime: runtime,
		config:  configmanager.NewConfigManager(nil),
		version: version,
	}

	var noColor bool

	cmd := &cobra.Command{
		Use:          "vvpctl",
		Short:        "Declarative deployments for the Ververica Platform",
		Long:         rootLongDesc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Help never fails at runtime.
			_ = cmd.Help()

			return nil
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor {
				notify.SetColor(false)
			}

			application.config.Writer = cmd.ErrOrStderr()
		},
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	// Flag registration only fails for unsupported field types.
	err := application.config.AddPersistentFlags(cmd)
	if err != nil {
		panic(err)
	}

	cmd.PersistentFlags().BoolVar(&noColor, NoColorFlagName, false, "Disable colored output")

	cmd.AddCommand(newApplyCmd(application))
	cmd.AddCommand(newDiffCmd(application))
	cmd.AddCommand(newGetCmd(application))
	cmd.AddCommand(newListCmd(application))
	cmd.AddCommand(newDeleteCmd(application))
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	err := errorhandler.NewExecutor().Execute(cmd.Context(), cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}
