package domain

import "context"

type DebtRepository interface {
	Get(ctx context.Context, token string) (*TokenDebt, error)
	GetAll(ctx context.Context) ([]TokenDebt, error)
	// AddTotal increases the owed amount at request-creation time.
	AddTotal(ctx context.Context, token string, amount uint64) error
	// AddClaimed increases the paid amount at asset-claim time.
	AddClaimed(ctx context.Context, token string, amount uint64) error
	// AddPrincipal records a principal reclaim without touching the
	// claimed amount.
	AddPrincipal(ctx context.Context, token string, amount uint64) error
	Close()
}
