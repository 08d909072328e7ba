package errorhandler_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/cli/ui/errorhandler"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTestBoom        = errors.New("boom")
	errOriginalFailure = errors.New("original failure")
	errBoomOriginal    = errors.New("boom: original failure")
)

type contextKey struct{}

func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	executor := errorhandler.NewExecutor()

	require.NoError(t, executor.Execute(context.Background(), nil))

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	require.NoError(t, executor.Execute(context.Background(), cmd))
}

func TestExecutePassesContext(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), contextKey{}, "vvpctl")

	var seen any

	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seen = cmd.Context().Value(contextKey{})

			return nil
		},
	}

	require.NoError(t, errorhandler.NewExecutor().Execute(ctx, cmd))
	assert.Equal(t, "vvpctl", seen)
}

func TestExecuteInvalidSubcommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "test"}
	root.AddCommand(&cobra.Command{Use: "valid", Run: func(*cobra.Command, []string) {}})
	root.SetArgs([]string{"invalid"})

	err := errorhandler.NewExecutor().Execute(context.Background(), root)
	require.Error(t, err)

	assert.Contains(t, err.Error(), `unknown command "invalid" for "test"`)
	assert.NotContains(t, err.Error(), "Error: ")
	assert.Contains(t, err.Error(), "Run 'test --help' for usage.")
}

func TestCommandErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		printed  string
		cause    error
		expected string
	}{
		{name: "cause only", cause: errTestBoom, expected: "boom"},
		{name: "distinct message", printed: "Error: normalized", cause: errOriginalFailure, expected: "normalized: original failure"},
		{name: "message includes cause", printed: "Error: boom: original failure", cause: errBoomOriginal, expected: "boom: original failure"},
		{name: "other output is not the message", printed: "progress", cause: errTestBoom, expected: "boom"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{
				Use:           "test",
				SilenceErrors: true,
				SilenceUsage:  true,
				RunE: func(cmd *cobra.Command, _ []string) error {
					if testCase.printed != "" {
						cmd.PrintErrln(testCase.printed)
					}

					return testCase.cause
				},
			}

			err := errorhandler.NewExecutor().Execute(context.Background(), cmd)

			var cmdErr *errorhandler.CommandError
			require.ErrorAs(t, err, &cmdErr)
			assert.Equal(t, testCase.expected, cmdErr.Error())
			require.ErrorIs(t, err, testCase.cause)
		})
	}
}

func TestExecutePassesThroughOtherOutput(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer

	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.PrintErr("Type \"yes\" to confirm deletion: ")

			return errTestBoom
		},
		SilenceUsage: true,
	}
	cmd.SetErr(&stderr)

	err := errorhandler.NewExecutor().Execute(context.Background(), cmd)

	require.ErrorIs(t, err, errTestBoom)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, `Type "yes" to confirm deletion: `, stderr.String())
	assert.Equal(t, &stderr, cmd.ErrOrStderr())
}

func TestCommandErrorZeroValues(t *testing.T) {
	t.Parallel()

	var nilErr *errorhandler.CommandError

	assert.Empty(t, nilErr.Error())
	require.NoError(t, nilErr.Unwrap())
	assert.Empty(t, (&errorhandler.CommandError{}).Error())
}

func TestDefaultNormalizer(t *testing.T) {
	t.Parallel()

	normalizer := errorhandler.DefaultNormalizer{}

	assert.Empty(t, normalizer.Normalize("   \n\t  "))
	assert.Equal(t, "something bad\nRun help", normalizer.Normalize("  Error: something bad \nRun help\n"))
}
