package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/sqlite/sqlc/queries"
)

type debtRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewDebtRepository(config ...interface{}) (domain.DebtRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open debt repository: %w", err)
	}

	return &debtRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *debtRepository) Get(ctx context.Context, token string) (*domain.TokenDebt, error) {
	row, err := r.querier.GetDebt(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token debt: %w", err)
	}
	debt := debtFromRow(row)
	return &debt, nil
}

func (r *debtRepository) GetAll(ctx context.Context) ([]domain.TokenDebt, error) {
	rows, err := r.querier.ListDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list token debts: %w", err)
	}
	debts := make([]domain.TokenDebt, 0, len(rows))
	for _, row := range rows {
		debts = append(debts, debtFromRow(row))
	}
	return debts, nil
}

func (r *debtRepository) AddTotal(ctx context.Context, token string, amount uint64) error {
	return r.querier.AddDebtTotal(ctx, queries.AddDebtTotalParams{
		Token:       token,
		TotalAmount: int64(amount),
	})
}

func (r *debtRepository) AddClaimed(ctx context.Context, token string, amount uint64) error {
	return r.querier.AddDebtClaimed(ctx, queries.AddDebtClaimedParams{
		Token:         token,
		ClaimedAmount: int64(amount),
	})
}

func (r *debtRepository) AddPrincipal(
	ctx context.Context, token string, amount uint64,
) error {
	return r.querier.AddDebtPrincipal(ctx, queries.AddDebtPrincipalParams{
		Token:           token,
		PrincipalAmount: int64(amount),
	})
}

func (r *debtRepository) Close() {
	_ = r.db.Close()
}

func debtFromRow(row queries.Debt) domain.TokenDebt {
	return domain.TokenDebt{
		Token:           row.Token,
		TotalAmount:     uint64(row.TotalAmount),
		ClaimedAmount:   uint64(row.ClaimedAmount),
		PrincipalAmount: uint64(row.PrincipalAmount),
	}
}
