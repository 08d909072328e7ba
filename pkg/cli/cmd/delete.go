package cmd

import (
	"context"
	"errors"
	"fmt"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/cli/ui/confirm"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/di"
	configmanager "github.com/3bit-techs/vvpctl/pkg/io/config-manager/vvpctl"
	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// ErrNoDeleteTargets is returned when delete gets neither names nor -f.
var ErrNoDeleteTargets = errors.New("specify either deployment names or -f")

const deleteLongDesc = `Cancel and delete deployments.

A running deployment is cancelled first; vvpctl waits until the platform
reports it CANCELLED (at most --wait-timeout) and then deletes it. Deployments
that do not exist are skipped. The recorded last applied document is removed.

On a terminal, vvpctl asks for confirmation unless --force is given.

Examples:
  vvpctl delete orders
  vvpctl delete -f deployments/ --force`

type deleteOptions struct {
	names    []string
	filename string
	force    bool
}

func newDeleteCmd(application *app) *cobra.Command {
	var opts deleteOptions

	cmd := &cobra.Command{
		Use:   "delete [NAME...]",
		Short: "Cancel and delete deployments",
		Long:  deleteLongDesc,
	}

	runE := di.RunEWithRuntime(application.runtime, di.WithTimer(
		func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return application.runDelete(cmd, injector, tmr, opts)
		},
	))
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts.names = args

		return runE(cmd, args)
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.filename, FilenameFlagName, "f", "", "Delete the deployments described by these documents")
	flags.BoolVar(&opts.force, "force", false, "Skip the confirmation prompt")

	// Registration only fails for unsupported field types.
	err := application.config.AddFlagsFromFields(cmd, configmanager.WaitTimeoutFieldSelector())
	if err != nil {
		panic(err)
	}

	return cmd
}

func (a *app) runDelete(
	cmd *cobra.Command,
	injector di.Injector,
	tmr timer.Timer,
	opts deleteOptions,
) error {
	if (len(opts.names) == 0) == (opts.filename == "") {
		return ErrNoDeleteTargets
	}

	tmr.Start()

	sess, err := a.session(cmd, injector, tmr)
	if err != nil {
		return err
	}

	ids, err := a.deleteTargets(cmd, sess, opts.names, opts.filename)
	if err != nil {
		return err
	}

	prompter := confirm.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	if !prompter.ShouldSkip(opts.force) {
		err = prompter.Confirm(previewTargets(cmd.Context(), sess.client, ids))
		if err != nil {
			return err
		}
	}

	rec := sess.reconciler()
	deleted := make([]bool, len(ids))
	failed := make([]bool, len(ids))
	tasks := make([]notify.ProgressTask, len(ids))

	for index, id := range ids {
		tasks[index] = notify.ProgressTask{
			Name: id.String(),
			Fn: func(ctx context.Context) error {
				var err error

				deleted[index], err = rec.Delete(ctx, id)
				failed[index] = err != nil

				return err
			},
		}
	}

	out := cmd.OutOrStdout()
	group := notify.NewProgressGroup("Delete deployments", "🗑️", out,
		notify.WithLabels(notify.DeletingLabels()),
		notify.WithTimer(tmr),
	)

	runErr := group.Run(cmd.Context(), tasks...)

	for index, id := range ids {
		if !deleted[index] && !failed[index] {
			notify.Infof(out, "%s did not exist", id)
		}
	}

	return runErr
}

func (a *app) deleteTargets(cmd *cobra.Command, sess *session, args []string, filename string) ([]v1alpha1.Identity, error) {
	if filename != "" {
		docs, err := sess.load(cmd, filename)
		if err != nil {
			return nil, err
		}

		ids := make([]v1alpha1.Identity, len(docs))
		for index, doc := range docs {
			ids[index] = doc.Identity
		}

		return ids, nil
	}

	seen := map[v1alpha1.Identity]bool{}
	ids := make([]v1alpha1.Identity, 0, len(args))

	for _, arg := range args {
		id, err := sess.identity(arg)
		if err != nil {
			return nil, err
		}

		if seen[id] {
			continue
		}

		seen[id] = true
		ids = append(ids, id)
	}

	return ids, nil
}

// previewTargets describes each deployment with its current status.
func previewTargets(ctx context.Context, client vvp.Client, ids []v1alpha1.Identity) []confirm.Target {
	targets := make([]confirm.Target, len(ids))

	for index, id := range ids {
		targets[index] = confirm.Target{Name: id.String()}

		resource, err := client.Get(ctx, id)
		switch {
		case errors.Is(err, vvp.ErrNotFound):
			targets[index].Status = "not found"
		case err != nil:
			targets[index].Status = fmt.Sprintf("unknown: %v", err)
		default:
			targets[index].Status = resource.StatusState
		}
	}

	return targets
}
