package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/postgres/sqlc/queries"
)

type quotaRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewQuotaRepository(config ...interface{}) (domain.QuotaRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open quota repository: %w", err)
	}

	return &quotaRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *quotaRepository) Get(
	ctx context.Context, token string,
) (*domain.QuotaState, error) {
	row, err := r.querier.GetQuota(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota state: %w", err)
	}
	return &domain.QuotaState{
		Token:         row.Token,
		Available:     uint64(row.Available),
		LastUpdatedAt: row.LastUpdatedAt,
	}, nil
}

func (r *quotaRepository) Upsert(ctx context.Context, state domain.QuotaState) error {
	return r.querier.UpsertQuota(ctx, queries.UpsertQuotaParams{
		Token:         state.Token,
		Available:     int64(state.Available),
		LastUpdatedAt: state.LastUpdatedAt,
	})
}

func (r *quotaRepository) Close() {
	_ = r.db.Close()
}
