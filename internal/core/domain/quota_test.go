package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuotaAccrual(t *testing.T) {
	const (
		rate = 11574 // ~10 BTC/day in 8-decimal units per second
		cap  = 10 * 1e8
	)

	q := NewQuotaState("0xwbtc", 1000)
	require.Zero(t, q.Available)

	// accrual is monotone while nothing consumes
	var prev uint64
	for _, now := range []int64{1000, 1100, 5000, 50000, 100000} {
		q.Accrue(rate, cap, now)
		require.GreaterOrEqual(t, q.Available, prev)
		require.LessOrEqual(t, q.Available, uint64(cap))
		prev = q.Available
	}

	// long enough to hit the cap and stay there
	q.Accrue(rate, cap, 1000000)
	require.Equal(t, uint64(cap), q.Available)
	q.Accrue(rate, cap, 2000000)
	require.Equal(t, uint64(cap), q.Available)
}

func TestQuotaAccrueIgnoresPast(t *testing.T) {
	q := NewQuotaState("0xwbtc", 1000)
	q.Accrue(100, 1e8, 2000)
	banked := q.Available

	q.Accrue(100, 1e8, 1500)
	require.Equal(t, banked, q.Available)
	require.Equal(t, int64(2000), q.LastUpdatedAt)
}

func TestQuotaConsume(t *testing.T) {
	q := NewQuotaState("0xwbtc", 0)
	q.Accrue(100, 1e8, 100) // banks 10000

	require.False(t, q.Consume(10001))
	require.Equal(t, uint64(10000), q.Available)

	require.True(t, q.Consume(4000))
	require.Equal(t, uint64(6000), q.Available)

	require.True(t, q.Consume(6000))
	require.Zero(t, q.Available)
	require.False(t, q.Consume(1))
}

func TestQuotaRateRetune(t *testing.T) {
	q := NewQuotaState("0xwbtc", 0)
	q.Accrue(100, 1e8, 10)
	require.Equal(t, uint64(1000), q.Available)

	// the new rate applies from the last update onward only
	q.Accrue(200, 1e8, 20)
	require.Equal(t, uint64(3000), q.Available)
}

func TestQuotaCapShrink(t *testing.T) {
	q := NewQuotaState("0xwbtc", 0)
	q.Accrue(100, 1e8, 1000)
	require.Equal(t, uint64(100000), q.Available)

	// lowering the cap clamps the banked quota on the next accrual
	q.Accrue(0, 50000, 1001)
	require.Equal(t, uint64(50000), q.Available)
}

func TestQuotaAccrueOverflow(t *testing.T) {
	q := NewQuotaState("0xwbtc", 0)
	q.Accrue(math.MaxUint64, math.MaxUint64, math.MaxInt64)
	require.Equal(t, uint64(math.MaxUint64), q.Available)
}
