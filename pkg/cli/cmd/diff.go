package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/3bit-techs/vvpctl/pkg/cli/parallel"
	"github.com/3bit-techs/vvpctl/pkg/di"
	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
	"github.com/3bit-techs/vvpctl/pkg/svc/reconciler"
	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/spf13/cobra"
)

// ErrChangesFound is returned by diff --exit-code when a deployment differs
// from its document.
var ErrChangesFound = errors.New("changes found")

const diffLongDesc = `Show the changes apply would make, without calling any mutating endpoint.

Every change is printed with its field path: + for fields that would be added,
~ for modified and - for removed ones.

Examples:
  # Preview a directory of deployments
  vvpctl diff -f deployments/

  # Fail a CI job when the platform drifted from the repository
  vvpctl diff -f deployments/ --exit-code`

type diffOptions struct {
	filename string
	prune    bool
	exitCode bool
	width    uint
}

type documentDiff struct {
	diff   *diff.Diff
	exists bool
}

func newDiffCmd(application *app) *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Preview changes between documents and live deployments",
		Long:  diffLongDesc,
		Args:  cobra.NoArgs,
		RunE: di.RunEWithRuntime(application.runtime, func(cmd *cobra.Command, injector di.Injector) error {
			return application.runDiff(cmd, injector, opts)
		}),
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.filename, FilenameFlagName, "f", "", "File, directory or - with deployment documents")
	flags.BoolVar(&opts.prune, "prune", false, "Also show removal of live fields that were never applied")
	flags.BoolVar(&opts.exitCode, "exit-code", false, "Exit with status 1 when there are changes")
	flags.UintVar(&opts.width, "width", 0, "Wrap long lines at this many columns (0 uses the terminal width)")
	_ = cmd.MarkFlagRequired(FilenameFlagName)

	return cmd
}

func (a *app) runDiff(cmd *cobra.Command, injector di.Injector, opts diffOptions) error {
	sess, err := a.session(cmd, injector, nil)
	if err != nil {
		return err
	}

	docs, err := sess.load(cmd, opts.filename)
	if err != nil {
		return err
	}

	rec := sess.reconciler(reconciler.WithPrune(opts.prune))

	results, err := parallel.Map(cmd.Context(), parallel.NewExecutor(0), len(docs),
		func(ctx context.Context, index int) (documentDiff, error) {
			changes, live, err := rec.Diff(ctx, docs[index])
			if err != nil {
				return documentDiff{}, fmt.Errorf("%s: %w", docs[index].Identity, err)
			}

			return documentDiff{diff: changes, exists: live.Exists}, nil
		},
	)
	if err != nil {
		return err
	}

	render := renderOptions(cmd.OutOrStdout(), opts.width)
	out := notify.NewStageSeparatingWriter(cmd.OutOrStdout())
	changed := false

	for index, result := range results {
		suffix := ""
		if !result.exists {
			suffix = " (new)"
		}

		notify.Titlef(out, "📄", "%s%s", docs[index].Identity, suffix)

		err = diff.Render(out, result.diff, render)
		if err != nil {
			return err
		}

		changed = changed || !result.diff.IsEmpty()
	}

	if opts.exitCode && changed {
		return ErrChangesFound
	}

	return nil
}
