package main

import (
	"bytes"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/cli/cmd"
	"github.com/stretchr/testify/assert"
)

func TestRunSafelyReturnsRunnerExitCode(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer

	code := runSafely([]string{"apply"}, func(args []string) int {
		assert.Equal(t, []string{"apply"}, args)

		return cmd.ExitPartialApply
	}, &errOut)

	assert.Equal(t, cmd.ExitPartialApply, code)
	assert.Empty(t, errOut.String())
}

func TestRunSafelyRecoversPanics(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer

	code := runSafely(nil, func([]string) int {
		panic("boom")
	}, &errOut)

	assert.Equal(t, cmd.ExitFailure, code)
	assert.Contains(t, errOut.String(), "panic recovered: boom")
}

func TestRunWithArgsVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cmd.ExitOK, runWithArgs([]string{"version"}))
}

func TestRunWithArgsUnknownCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cmd.ExitFailure, runWithArgs([]string{"nonexistent"}))
}
