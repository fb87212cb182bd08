package domain

import "context"

// FeeLedger accumulates the wrapped-token fees retained at request creation.
// Only an explicit administrative withdrawal decreases the balance.
type FeeLedger struct {
	Accrued   uint64
	Withdrawn uint64
}

func (f FeeLedger) Balance() uint64 {
	return f.Accrued - f.Withdrawn
}

type FeeRepository interface {
	Get(ctx context.Context) (*FeeLedger, error)
	Add(ctx context.Context, amount uint64) error
	Withdraw(ctx context.Context, amount uint64) error
	Close()
}
