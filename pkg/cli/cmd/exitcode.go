package cmd

import (
	"errors"

	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/svc/loader"
	"github.com/3bit-techs/vvpctl/pkg/svc/reconciler"
)

// Exit codes of vvpctl.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitConnectivity = 3
	ExitPartialApply = 4
	ExitConflict     = 5
)

// ExitCode maps an error returned by Execute to the process exit code.
// When several deployments failed, the most specific kind wins: partial
// apply, then conflict, connectivity and invalid input.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		partial      *reconciler.PartialApplyError
		conflict     *reconciler.ConflictError
		connectivity *vvp.ConnectivityError
		parse        *loader.ParseError
		missing      *loader.MissingFieldError
	)

	switch {
	case errors.As(err, &partial):
		return ExitPartialApply
	case errors.As(err, &conflict):
		return ExitConflict
	case errors.As(err, &connectivity):
		return ExitConnectivity
	case errors.As(err, &parse), errors.As(err, &missing):
		return ExitInvalidInput
	default:
		return ExitFailure
	}
}
