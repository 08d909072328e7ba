package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/3bit-techs/vvpctl/pkg/di"
	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
	"github.com/3bit-techs/vvpctl/pkg/svc/loader"
	"github.com/3bit-techs/vvpctl/pkg/svc/reconciler"
	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// ErrInvalidParallelism is returned for a --parallel value below 1.
var ErrInvalidParallelism = errors.New("--parallel must be at least 1")

const applyLongDesc = `Reconcile deployments with the documents at PATH.

PATH is a file, a directory (every .yaml, .yml, .json and .toml file directly
inside it) or "-" for YAML on standard input. For every document the live
deployment is fetched and diffed; a missing deployment is created, an existing
one is patched field by field. Fields that were applied before and are no
longer in the document are removed; --prune also removes fields vvpctl never
applied, such as defaults filled in by the platform.

Examples:
  # Apply a single deployment
  vvpctl apply -f deployments/orders.yaml

  # Preview what would change without calling the API
  vvpctl apply -f deployments/ --dry-run

  # Apply a directory, four deployments at a time
  vvpctl apply -f deployments/ --parallel 4`

type applyOptions struct {
	filename string
	dryRun   bool
	prune    bool
	parallel int
	width    uint
}

func newApplyCmd(application *app) *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile deployments with documents",
		Long:  applyLongDesc,
		Args:  cobra.NoArgs,
		RunE: di.RunEWithRuntime(application.runtime, di.WithTimer(
			func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
				return application.runApply(cmd, injector, tmr, opts)
			},
		)),
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.filename, FilenameFlagName, "f", "", "File, directory or - with deployment documents")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print the changes without applying them")
	flags.BoolVar(&opts.prune, "prune", false, "Also remove live fields that were never applied")
	flags.IntVar(&opts.parallel, "parallel", 1, "Number of deployments reconciled at once")
	flags.UintVar(&opts.width, "width", 0, "Wrap long dry-run lines at this many columns (0 uses the terminal width)")
	_ = cmd.MarkFlagRequired(FilenameFlagName)

	return cmd
}

func (a *app) runApply(cmd *cobra.Command, injector di.Injector, tmr timer.Timer, opts applyOptions) error {
	if opts.parallel < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidParallelism, opts.parallel)
	}

	tmr.Start()

	sess, err := a.session(cmd, injector, tmr)
	if err != nil {
		return err
	}

	docs, err := sess.load(cmd, opts.filename)
	if err != nil {
		return err
	}

	rec := sess.reconciler(reconciler.WithDryRun(opts.dryRun), reconciler.WithPrune(opts.prune))
	results := make([]*reconciler.Result, len(docs))
	tasks := make([]notify.ProgressTask, len(docs))

	for index, doc := range docs {
		tasks[index] = notify.ProgressTask{
			Name: doc.Identity.String(),
			Fn: func(ctx context.Context) error {
				result, err := rec.Reconcile(ctx, doc)
				results[index] = result

				return err
			},
		}
	}

	title := "Apply deployments"
	if opts.dryRun {
		title = "Plan deployments"
	}

	out := cmd.OutOrStdout()
	group := notify.NewProgressGroup(title, "🚀", out,
		notify.WithLabels(notify.ApplyingLabels()),
		notify.WithConcurrency(opts.parallel),
		notify.WithTimer(tmr),
	)

	runErr := group.Run(cmd.Context(), tasks...)

	err = reportApplied(out, docs, results, renderOptions(out, opts.width))
	if err != nil {
		return err
	}

	reportFailures(cmd.ErrOrStderr(), runErr)

	return runErr
}

func reportApplied(
	out io.Writer,
	docs []*loader.Document,
	results []*reconciler.Result,
	render diff.RenderOptions,
) error {
	for index, result := range results {
		if result == nil {
			continue
		}

		id := docs[index].Identity
		summary := result.Diff.Summary()

		switch {
		case !result.Changed():
			notify.Infof(out, "%s unchanged", id)
		case result.DryRun:
			verb := "updated"
			if !result.Plan.IsEmpty() && result.Plan.Operations[0].Action == reconciler.ActionCreate {
				verb = "created"
			}

			notify.Activityf(out, "%s would be %s:", id, verb)

			err := diff.Render(out, result.Diff, render)
			if err != nil {
				return err
			}
		case result.Created:
			notify.Successf(out, "%s created (%s)", id, summary)
		default:
			notify.Successf(out, "%s updated (%s)", id, summary)
		}
	}

	return nil
}

// reportFailures prints what was and was not applied for partial failures.
func reportFailures(out io.Writer, err error) {
	for _, failure := range leafErrors(err) {
		var partial *reconciler.PartialApplyError
		if errors.As(failure, &partial) {
			notify.Errorf(out, "%s was partially applied:\n%s", partial.Identity, strings.TrimSuffix(partial.Report(), "\n"))
		}
	}
}
