package domain

import "context"

type RedeemRepository interface {
	// Append adds a redeem at the tail of the recipient's queue and returns
	// its index.
	Append(ctx context.Context, redeem DelayedRedeem) (uint64, error)
	GetQueue(ctx context.Context, recipient string) ([]DelayedRedeem, error)
	// GetAll returns every pending redeem across all queues, ordered by
	// creation time. Used by the background watcher.
	GetAll(ctx context.Context) ([]DelayedRedeem, error)
	GetByIndex(ctx context.Context, recipient string, index uint64) (*DelayedRedeem, error)
	QueueLength(ctx context.Context, recipient string) (uint64, error)
	// Remove deletes the redeems with the given ids from the recipient's
	// queue. The surviving entries keep their relative order and are
	// compacted to indices 0..n-1.
	Remove(ctx context.Context, recipient string, ids []string) error
	Close()
}
