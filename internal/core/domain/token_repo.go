package domain

import "context"

type TokenRepository interface {
	Get(ctx context.Context, address string) (*Token, error)
	GetAll(ctx context.Context) ([]Token, error)
	Upsert(ctx context.Context, token Token) error
	// UpdateListed flips the wrapped-asset list membership for the given
	// tokens, returning the addresses whose membership actually changed.
	UpdateListed(ctx context.Context, addresses []string, listed bool) ([]string, error)
	UpdatePaused(ctx context.Context, addresses []string, paused bool) ([]string, error)
	Close()
}
