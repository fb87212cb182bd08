package livestore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	inmemory "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/live-store/inmemory"
	"github.com/stretchr/testify/require"
)

const (
	wbtc  = "0x1111111111111111111111111111111111111111"
	tbtc  = "0x2222222222222222222222222222222222222222"
	alice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestLiveStoreImplementations(t *testing.T) {
	stores := []struct {
		name  string
		store ports.LiveStore
	}{
		{"inmemory", inmemory.NewLiveStore()},
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			runLiveStoreTests(t, tt.store)
		})
	}
}

func runLiveStoreTests(t *testing.T, store ports.LiveStore) {
	t.Run("ClaimGuardStore", func(t *testing.T) {
		ctx := context.Background()

		release, err := store.ClaimGuards().Acquire(ctx, alice)
		require.NoError(t, err)
		require.NotNil(t, release)

		// A different recipient is not blocked by alice's guard.
		releaseBob, err := store.ClaimGuards().Acquire(ctx, bob)
		require.NoError(t, err)
		releaseBob()

		// A second acquire on the same recipient waits for the release.
		acquired := make(chan struct{})
		go func() {
			release2, err := store.ClaimGuards().Acquire(ctx, alice)
			require.NoError(t, err)
			close(acquired)
			release2()
		}()

		select {
		case <-acquired:
			t.Fatal("guard acquired while still held")
		case <-time.After(50 * time.Millisecond):
		}

		release()
		select {
		case <-acquired:
		case <-time.After(2 * time.Second):
			t.Fatal("guard not acquired after release")
		}

		// Acquire gives up when the context is cancelled.
		release, err = store.ClaimGuards().Acquire(ctx, alice)
		require.NoError(t, err)

		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = store.ClaimGuards().Acquire(cancelCtx, alice)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		release()

		// Guards serialize concurrent holders, never run two at once.
		var held, maxHeld int
		var mtx sync.Mutex
		wg := sync.WaitGroup{}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := store.ClaimGuards().Acquire(ctx, alice)
				require.NoError(t, err)
				defer release()

				mtx.Lock()
				held++
				if held > maxHeld {
					maxHeld = held
				}
				mtx.Unlock()

				time.Sleep(5 * time.Millisecond)

				mtx.Lock()
				held--
				mtx.Unlock()
			}()
		}
		wg.Wait()
		require.Equal(t, 1, maxHeld)
	})

	t.Run("QuotaCacheStore", func(t *testing.T) {
		ctx := context.Background()

		_, ok := store.QuotaCache().Get(ctx, wbtc)
		require.False(t, ok)

		err := store.QuotaCache().Set(ctx, wbtc, 42_000_000)
		require.NoError(t, err)
		err = store.QuotaCache().Set(ctx, tbtc, 0)
		require.NoError(t, err)

		available, ok := store.QuotaCache().Get(ctx, wbtc)
		require.True(t, ok)
		require.Equal(t, uint64(42_000_000), available)

		// A cached zero is still a hit.
		available, ok = store.QuotaCache().Get(ctx, tbtc)
		require.True(t, ok)
		require.Zero(t, available)

		err = store.QuotaCache().Set(ctx, wbtc, 10_000_000)
		require.NoError(t, err)
		available, ok = store.QuotaCache().Get(ctx, wbtc)
		require.True(t, ok)
		require.Equal(t, uint64(10_000_000), available)

		err = store.QuotaCache().Delete(ctx, wbtc)
		require.NoError(t, err)
		_, ok = store.QuotaCache().Get(ctx, wbtc)
		require.False(t, ok)

		err = store.QuotaCache().Delete(ctx, tbtc)
		require.NoError(t, err)
	})
}
