package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/postgres/sqlc/queries"
)

type tokenRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewTokenRepository(config ...interface{}) (domain.TokenRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open token repository: %w", err)
	}

	return &tokenRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *tokenRepository) Get(ctx context.Context, address string) (*domain.Token, error) {
	row, err := r.querier.GetToken(ctx, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	token := tokenFromRow(row)
	return &token, nil
}

func (r *tokenRepository) GetAll(ctx context.Context) ([]domain.Token, error) {
	rows, err := r.querier.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	tokens := make([]domain.Token, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, tokenFromRow(row))
	}
	return tokens, nil
}

func (r *tokenRepository) Upsert(ctx context.Context, token domain.Token) error {
	return r.querier.UpsertToken(ctx, queries.UpsertTokenParams{
		Address:        token.Address,
		Decimals:       int64(token.Decimals),
		Listed:         token.Listed,
		Paused:         token.Paused,
		QuotaPerSecond: int64(token.QuotaPerSecond),
		MaxFreeQuota:   int64(token.MaxFreeQuota),
	})
}

func (r *tokenRepository) UpdateListed(
	ctx context.Context, addresses []string, listed bool,
) ([]string, error) {
	changed := make([]string, 0, len(addresses))
	for _, address := range addresses {
		rows, err := r.querier.UpdateTokenListed(ctx, queries.UpdateTokenListedParams{
			Listed:  listed,
			Address: address,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update listed flag: %w", err)
		}
		if rows > 0 {
			changed = append(changed, address)
		}
	}
	return changed, nil
}

func (r *tokenRepository) UpdatePaused(
	ctx context.Context, addresses []string, paused bool,
) ([]string, error) {
	changed := make([]string, 0, len(addresses))
	for _, address := range addresses {
		rows, err := r.querier.UpdateTokenPaused(ctx, queries.UpdateTokenPausedParams{
			Paused:  paused,
			Address: address,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update paused flag: %w", err)
		}
		if rows > 0 {
			changed = append(changed, address)
		}
	}
	return changed, nil
}

func (r *tokenRepository) Close() {
	_ = r.db.Close()
}

func tokenFromRow(row queries.Token) domain.Token {
	return domain.Token{
		Address:        row.Address,
		Decimals:       uint8(row.Decimals),
		Listed:         row.Listed,
		Paused:         row.Paused,
		QuotaPerSecond: uint64(row.QuotaPerSecond),
		MaxFreeQuota:   uint64(row.MaxFreeQuota),
	}
}
