package timescheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	timescheduler "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

func TestScheduleTaskOnce(t *testing.T) {
	t.Parallel()

	svc := timescheduler.NewScheduler()
	svc.Start()
	defer svc.Stop()

	var calls atomic.Int32
	err := svc.ScheduleTaskOnce(time.Second, func() {
		calls.Add(1)
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 3*time.Second, 50*time.Millisecond)

	// The task does not fire a second time.
	time.Sleep(1500 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestScheduleTaskRepeating(t *testing.T) {
	t.Parallel()

	svc := timescheduler.NewScheduler()
	svc.Start()
	defer svc.Stop()

	var calls atomic.Int32
	err := svc.ScheduleTaskRepeating(500*time.Millisecond, func() {
		calls.Add(1)
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond)
}
