package domain

import "math"

// QuotaState is the token bucket backing the per-asset rate limiter.
// Available only grows through time-based accrual, capped by the token's
// MaxFreeQuota, and only shrinks when a redeem request consumes it.
type QuotaState struct {
	Token         string
	Available     uint64
	LastUpdatedAt int64
}

func NewQuotaState(token string, now int64) *QuotaState {
	return &QuotaState{Token: token, LastUpdatedAt: now}
}

// Accrue banks the quota earned since the last update at the given rate,
// saturating at maxFreeQuota. Retuning the rate only affects accrual from
// the previous update time onward, never retroactively.
func (q *QuotaState) Accrue(rate, maxFreeQuota uint64, now int64) {
	if now <= q.LastUpdatedAt {
		return
	}
	elapsed := uint64(now - q.LastUpdatedAt)
	q.LastUpdatedAt = now

	if rate == 0 {
		if q.Available > maxFreeQuota {
			q.Available = maxFreeQuota
		}
		return
	}

	accrued := elapsed * rate
	if elapsed != 0 && accrued/elapsed != rate {
		accrued = math.MaxUint64
	}
	if q.Available > math.MaxUint64-accrued {
		q.Available = math.MaxUint64
	} else {
		q.Available += accrued
	}
	if q.Available > maxFreeQuota {
		q.Available = maxFreeQuota
	}
}

// Consume spends amount from the bucket, reporting false when the banked
// quota is insufficient. Callers must Accrue first.
func (q *QuotaState) Consume(amount uint64) bool {
	if amount > q.Available {
		return false
	}
	q.Available -= amount
	return true
}
