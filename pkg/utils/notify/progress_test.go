package notify_test

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTaskFailed = errors.New("resourceVersion conflict")

func TestProgressGroup_EmptyTasks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := notify.NewProgressGroup("Applying", "🚀", &buf).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestProgressGroup_SingleTask(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	group := notify.NewProgressGroup("Apply deployments", "🚀", &buf, notify.WithLabels(notify.ApplyingLabels()))

	err := group.Run(context.Background(), notify.ProgressTask{
		Name: "default/orders",
		Fn:   func(context.Context) error { return nil },
	})

	require.NoError(t, err)
	assert.Equal(t,
		"🚀 Apply deployments...\n► default/orders applying\n✔ default/orders applied\n",
		buf.String(),
	)
}

func TestProgressGroup_FailureDoesNotStopOtherTasks(t *testing.T) {
	t.Parallel()

	var (
		buf  bytes.Buffer
		runs atomic.Int32
	)

	group := notify.NewProgressGroup("Delete deployments", "🗑️", &buf, notify.WithLabels(notify.DeletingLabels()))

	err := group.Run(context.Background(),
		notify.ProgressTask{Name: "default/a", Fn: func(context.Context) error {
			runs.Add(1)

			return errTaskFailed
		}},
		notify.ProgressTask{Name: "default/b", Fn: func(context.Context) error {
			runs.Add(1)

			return nil
		}},
		notify.ProgressTask{Name: "default/c", Fn: func(context.Context) error {
			runs.Add(1)

			return errTaskFailed
		}},
	)

	require.ErrorIs(t, err, errTaskFailed)
	assert.Contains(t, err.Error(), "default/a: resourceVersion conflict")
	assert.Contains(t, err.Error(), "default/c: resourceVersion conflict")
	assert.Equal(t, int32(3), runs.Load())
	assert.Contains(t, buf.String(), "✔ default/b deleted\n")
	assert.Contains(t, buf.String(), "✗ default/a failed\n")
}

func TestProgressGroup_ConcurrencyLimit(t *testing.T) {
	t.Parallel()

	var (
		running atomic.Int32
		peak    atomic.Int32
	)

	task := func(context.Context) error {
		current := running.Add(1)
		for {
			seen := peak.Load()
			if current <= seen || peak.CompareAndSwap(seen, current) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		running.Add(-1)

		return nil
	}

	var buf bytes.Buffer

	err := notify.NewProgressGroup("Apply", "", &buf, notify.WithConcurrency(2)).Run(context.Background(),
		notify.ProgressTask{Name: "a", Fn: task},
		notify.ProgressTask{Name: "b", Fn: task},
		notify.ProgressTask{Name: "c", Fn: task},
		notify.ProgressTask{Name: "d", Fn: task},
	)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Contains(t, buf.String(), "► Apply...\n")
}

func TestProgressGroup_PrintsTiming(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	group := notify.NewProgressGroup("Apply", "🚀", &buf, notify.WithTimer(fixedTimer(time.Second, time.Second)))

	err := group.Run(context.Background(), notify.ProgressTask{Name: "a", Fn: func(context.Context) error { return nil }})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "  total:  ")
}
