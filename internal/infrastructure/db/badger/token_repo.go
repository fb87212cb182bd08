package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const tokenStoreDir = "tokens"

type tokenRepository struct {
	store *badgerhold.Store
}

func NewTokenRepository(config ...interface{}) (domain.TokenRepository, error) {
	baseDir, logger, err := parseConfig(config...)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, tokenStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %s", err)
	}

	return &tokenRepository{store}, nil
}

func (r *tokenRepository) Get(ctx context.Context, address string) (*domain.Token, error) {
	var token domain.Token
	err := r.store.Get(address, &token)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

func (r *tokenRepository) GetAll(ctx context.Context) ([]domain.Token, error) {
	var tokens []domain.Token
	if err := r.store.Find(&tokens, nil); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Address < tokens[j].Address
	})
	return tokens, nil
}

func (r *tokenRepository) Upsert(ctx context.Context, token domain.Token) error {
	return r.upsert(token.Address, &token)
}

func (r *tokenRepository) UpdateListed(
	ctx context.Context, addresses []string, listed bool,
) ([]string, error) {
	changed := make([]string, 0, len(addresses))
	for _, address := range addresses {
		token, err := r.Get(ctx, address)
		if err != nil {
			return nil, err
		}
		if token == nil || token.Listed == listed {
			continue
		}
		token.Listed = listed
		if err := r.upsert(address, token); err != nil {
			return nil, err
		}
		changed = append(changed, address)
	}
	return changed, nil
}

func (r *tokenRepository) UpdatePaused(
	ctx context.Context, addresses []string, paused bool,
) ([]string, error) {
	changed := make([]string, 0, len(addresses))
	for _, address := range addresses {
		token, err := r.Get(ctx, address)
		if err != nil {
			return nil, err
		}
		if token == nil || token.Paused == paused {
			continue
		}
		token.Paused = paused
		if err := r.upsert(address, token); err != nil {
			return nil, err
		}
		changed = append(changed, address)
	}
	return changed, nil
}

func (r *tokenRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *tokenRepository) upsert(address string, token *domain.Token) error {
	if err := r.store.Upsert(address, token); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(address, token)
				attempts++
			}
		}
		return err
	}
	return nil
}
