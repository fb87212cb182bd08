package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/sqlite/sqlc/queries"
)

type redeemRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewRedeemRepository(config ...interface{}) (domain.RedeemRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open redeem repository: %w", err)
	}

	return &redeemRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *redeemRepository) Append(
	ctx context.Context, redeem domain.DelayedRedeem,
) (uint64, error) {
	index, err := r.QueueLength(ctx, redeem.Recipient)
	if err != nil {
		return 0, err
	}
	if err := r.querier.InsertRedeem(ctx, queries.InsertRedeemParams{
		ID:        redeem.Id,
		Recipient: redeem.Recipient,
		Token:     redeem.Token,
		Amount:    int64(redeem.Amount),
		CreatedAt: redeem.CreatedAt,
	}); err != nil {
		return 0, fmt.Errorf("failed to insert redeem: %w", err)
	}
	return index, nil
}

func (r *redeemRepository) GetQueue(
	ctx context.Context, recipient string,
) ([]domain.DelayedRedeem, error) {
	rows, err := r.querier.ListRedeemsByRecipient(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}
	return redeemsFromRows(rows), nil
}

func (r *redeemRepository) GetAll(ctx context.Context) ([]domain.DelayedRedeem, error) {
	rows, err := r.querier.ListRedeems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list redeems: %w", err)
	}
	return redeemsFromRows(rows), nil
}

func (r *redeemRepository) GetByIndex(
	ctx context.Context, recipient string, index uint64,
) (*domain.DelayedRedeem, error) {
	queue, err := r.GetQueue(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(queue)) {
		return nil, nil
	}
	redeem := queue[index]
	return &redeem, nil
}

func (r *redeemRepository) QueueLength(
	ctx context.Context, recipient string,
) (uint64, error) {
	count, err := r.querier.CountQueue(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return uint64(count), nil
}

func (r *redeemRepository) Remove(
	ctx context.Context, recipient string, ids []string,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	qtx := r.querier.WithTx(tx)
	for _, id := range ids {
		if err := qtx.DeleteRedeem(ctx, id); err != nil {
			//nolint:all
			tx.Rollback()
			return fmt.Errorf("failed to remove redeem %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *redeemRepository) Close() {
	_ = r.db.Close()
}

func redeemsFromRows(rows []queries.Redeem) []domain.DelayedRedeem {
	redeems := make([]domain.DelayedRedeem, 0, len(rows))
	for _, row := range rows {
		redeems = append(redeems, domain.DelayedRedeem{
			Id:        row.ID,
			Recipient: row.Recipient,
			Token:     row.Token,
			Amount:    uint64(row.Amount),
			CreatedAt: row.CreatedAt,
		})
	}
	return redeems
}
