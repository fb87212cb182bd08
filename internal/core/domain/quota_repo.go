package domain

import "context"

type QuotaRepository interface {
	Get(ctx context.Context, token string) (*QuotaState, error)
	Upsert(ctx context.Context, state QuotaState) error
	Close()
}
