package application

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	task func()
}

func (f *fakeScheduler) Start() {}
func (f *fakeScheduler) Stop()  {}
func (f *fakeScheduler) ScheduleTaskOnce(_ time.Duration, _ func()) error {
	return nil
}
func (f *fakeScheduler) ScheduleTaskRepeating(_ time.Duration, task func()) error {
	f.task = task
	return nil
}

func TestWatcher(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token8, 8, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 2*oneBTC)

	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token8, 2*oneBTC)
	require.NoError(t, err)

	scheduler := &fakeScheduler{}
	watcher := NewWatcher(env.repo, env.vault, env.alerts, scheduler, time.Minute)
	watcher.now = env.clock.Now
	require.NoError(t, watcher.Start())
	require.NotNil(t, scheduler.task)
	defer watcher.Stop()

	// nothing matured yet, no alerts
	scheduler.task()
	require.Zero(t, env.alerts.count(ports.RedeemsMatured))

	// the redeem matures between two sweeps and fires exactly once
	env.clock.Advance(redeemDelay)
	scheduler.task()
	require.Equal(t, 1, env.alerts.count(ports.RedeemsMatured))
	scheduler.task()
	require.Equal(t, 1, env.alerts.count(ports.RedeemsMatured))

	// the vault holds nothing, so the claimable debt is uncovered
	require.Equal(t, 2, env.alerts.count(ports.LiquidityShortfall))

	// funding the reserve silences the shortfall
	env.vault.Fund(token8, new(big.Int).SetUint64(2*oneBTC), 8)
	scheduler.task()
	require.Equal(t, 2, env.alerts.count(ports.LiquidityShortfall))
}

func TestWatcherWithoutAlerts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token8, 8, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 2*oneBTC)

	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token8, 2*oneBTC)
	require.NoError(t, err)

	// no alerts backend configured: sweeps over matured redeems and an
	// uncovered reserve must not panic
	scheduler := &fakeScheduler{}
	watcher := NewWatcher(env.repo, env.vault, nil, scheduler, time.Minute)
	watcher.now = env.clock.Now
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	env.clock.Advance(redeemDelay)
	require.NotPanics(t, func() {
		scheduler.task()
		scheduler.task()
	})
}
