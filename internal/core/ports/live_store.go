package ports

import "context"

type LiveStore interface {
	ClaimGuards() ClaimGuardStore
	QuotaCache() QuotaCacheStore
}

// ClaimGuardStore serializes mutating calls per recipient so no two claim or
// request operations on the same queue interleave, also across replicas when
// backed by redis.
type ClaimGuardStore interface {
	// Acquire blocks until the recipient's guard is free or ctx is done.
	// The returned function releases the guard.
	Acquire(ctx context.Context, recipient string) (func(), error)
}

// QuotaCacheStore is a non-durable read view of the accrued quota, refreshed
// on every consumption so status endpoints do not touch the data store.
type QuotaCacheStore interface {
	Get(ctx context.Context, token string) (uint64, bool)
	Set(ctx context.Context, token string, available uint64) error
	Delete(ctx context.Context, token string) error
}
