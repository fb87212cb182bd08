package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/sqlite/sqlc/queries"
)

type settingsRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewSettingsRepository(config ...interface{}) (domain.SettingsRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open settings repository: %w", err)
	}

	return &settingsRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	row, err := r.querier.GetSettings(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &domain.Settings{
		RedeemFeeRate:        uint64(row.RedeemFeeRate),
		RedeemDelay:          row.RedeemDelay,
		RedeemPrincipalDelay: row.RedeemPrincipalDelay,
		PrincipalDelayMinGap: row.PrincipalDelayMinGap,
		MinRedeemAmount:      uint64(row.MinRedeemAmount),
		UpdatedAt:            time.Unix(row.UpdatedAt, 0),
	}, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings domain.Settings) error {
	return r.querier.UpsertSettings(ctx, queries.UpsertSettingsParams{
		RedeemFeeRate:        int64(settings.RedeemFeeRate),
		RedeemDelay:          settings.RedeemDelay,
		RedeemPrincipalDelay: settings.RedeemPrincipalDelay,
		PrincipalDelayMinGap: settings.PrincipalDelayMinGap,
		MinRedeemAmount:      int64(settings.MinRedeemAmount),
		UpdatedAt:            settings.UpdatedAt.Unix(),
	})
}

func (r *settingsRepository) Clear(ctx context.Context) error {
	return r.querier.ClearSettings(ctx)
}

func (r *settingsRepository) Close() {
	_ = r.db.Close()
}
