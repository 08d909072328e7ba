package di_test

import (
	"errors"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/di"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errHandler = errors.New("handler error")
	errModule  = errors.New("module error")
)

func TestRuntimeInvokeRunsModulesInOrder(t *testing.T) {
	t.Parallel()

	var order []int

	record := func(n int) di.Module {
		return func(di.Injector) error {
			order = append(order, n)

			return nil
		}
	}

	runtime := di.New(record(1), nil)

	err := runtime.Invoke(func(di.Injector) error {
		order = append(order, 4)

		return nil
	}, record(2), nil, record(3))

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, order)
}

func TestRuntimeInvokeErrors(t *testing.T) {
	t.Parallel()

	t.Run("handler", func(t *testing.T) {
		t.Parallel()

		err := di.New().Invoke(func(di.Injector) error { return errHandler })
		require.ErrorIs(t, err, errHandler)
	})

	t.Run("module", func(t *testing.T) {
		t.Parallel()

		failing := func(di.Injector) error { return errModule }

		err := di.New(failing).Invoke(func(di.Injector) error {
			t.Fatal("handler must not run when a module fails")

			return nil
		})
		require.ErrorIs(t, err, errModule)
	})
}

func TestRuntimeInvokeUsesFreshInjector(t *testing.T) {
	t.Parallel()

	type counter struct{ n int }

	module := func(i di.Injector) error {
		do.Provide(i, func(di.Injector) (*counter, error) { return &counter{}, nil })

		return nil
	}

	runtime := di.New(module)

	for range 2 {
		err := runtime.Invoke(func(i di.Injector) error {
			c, err := do.Invoke[*counter](i)
			if err != nil {
				return err
			}

			c.n++
			assert.Equal(t, 1, c.n)

			return nil
		})
		require.NoError(t, err)
	}
}

func TestRunEWithRuntime(t *testing.T) {
	t.Parallel()

	type settings struct{ Server string }

	module := func(i di.Injector) error {
		do.ProvideValue(i, &settings{Server: "http://vvp"})

		return nil
	}

	var (
		received *cobra.Command
		resolved *settings
	)

	runE := di.RunEWithRuntime(di.New(module), func(cmd *cobra.Command, injector di.Injector) error {
		received = cmd

		var err error

		resolved, err = do.Invoke[*settings](injector)

		return err
	})

	cmd := &cobra.Command{Use: "apply"}
	require.NoError(t, runE(cmd, nil))
	assert.Same(t, cmd, received)
	assert.Equal(t, "http://vvp", resolved.Server)

	failing := di.RunEWithRuntime(di.New(), func(*cobra.Command, di.Injector) error { return errHandler })
	require.ErrorIs(t, failing(cmd, nil), errHandler)
}
