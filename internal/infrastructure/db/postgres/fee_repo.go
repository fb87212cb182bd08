package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/postgres/sqlc/queries"
)

type feeRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewFeeRepository(config ...interface{}) (domain.FeeRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open fee repository: %w", err)
	}

	return &feeRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *feeRepository) Get(ctx context.Context) (*domain.FeeLedger, error) {
	row, err := r.querier.GetFeeLedger(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.FeeLedger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fee ledger: %w", err)
	}
	return &domain.FeeLedger{
		Accrued:   uint64(row.Accrued),
		Withdrawn: uint64(row.Withdrawn),
	}, nil
}

func (r *feeRepository) Add(ctx context.Context, amount uint64) error {
	return r.querier.AddFee(ctx, int64(amount))
}

func (r *feeRepository) Withdraw(ctx context.Context, amount uint64) error {
	ledger, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if amount > ledger.Balance() {
		return fmt.Errorf("withdrawal of %d exceeds balance %d", amount, ledger.Balance())
	}
	return r.querier.WithdrawFee(ctx, int64(amount))
}

func (r *feeRepository) Close() {
	_ = r.db.Close()
}
