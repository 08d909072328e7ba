package reconciler

import (
	"errors"
	"fmt"
	"strings"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
)

// ErrNotCancelled is returned when a deployment did not reach CANCELLED in time.
var ErrNotCancelled = errors.New("deployment did not reach state CANCELLED")

// ConflictError reports that the deployment changed since it was fetched.
type ConflictError struct {
	Identity v1alpha1.Identity
	Expected int64
	Actual   int64
	Err      error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"deployment %s was modified concurrently (expected resourceVersion %d): %v",
			e.Identity, e.Expected, e.Err,
		)
	}

	return fmt.Sprintf(
		"deployment %s was modified concurrently: resourceVersion changed from %d to %d",
		e.Identity, e.Expected, e.Actual,
	)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// PartialApplyError reports an apply that stopped after some changes were
// already made. NotApplied holds exactly the changes that were not attempted.
type PartialApplyError struct {
	Identity   v1alpha1.Identity
	Applied    []diff.Change
	Failed     []diff.Change
	NotApplied []diff.Change
	Err        error
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf(
		"partially applied deployment %s: %d applied, %d failed, %d not applied: %v",
		e.Identity, len(e.Applied), len(e.Failed), len(e.NotApplied), e.Err,
	)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Err
}

// Report lists every change by outcome for manual remediation.
func (e *PartialApplyError) Report() string {
	var builder strings.Builder

	section := func(title string, changes []diff.Change) {
		if len(changes) == 0 {
			return
		}

		fmt.Fprintf(&builder, "%s:\n", title)

		for _, change := range changes {
			fmt.Fprintf(&builder, "  %s %s\n", change.Op.Symbol(), change.Path)
		}
	}

	section("applied", e.Applied)
	section("failed", e.Failed)
	section("not applied", e.NotApplied)

	return builder.String()
}
