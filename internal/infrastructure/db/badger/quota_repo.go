package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const quotaStoreDir = "quotas"

type quotaRepository struct {
	store *badgerhold.Store
}

func NewQuotaRepository(config ...interface{}) (domain.QuotaRepository, error) {
	baseDir, logger, err := parseConfig(config...)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, quotaStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open quota store: %s", err)
	}

	return &quotaRepository{store}, nil
}

func (r *quotaRepository) Get(
	ctx context.Context, token string,
) (*domain.QuotaState, error) {
	var state domain.QuotaState
	err := r.store.Get(token, &state)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota state: %w", err)
	}
	return &state, nil
}

func (r *quotaRepository) Upsert(ctx context.Context, state domain.QuotaState) error {
	if err := r.store.Upsert(state.Token, &state); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(state.Token, &state)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *quotaRepository) Close() {
	// nolint:all
	r.store.Close()
}
