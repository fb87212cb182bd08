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

const (
	feeStoreDir = "fees"
	feeKey      = "fees"
)

type feeRepository struct {
	store *badgerhold.Store
}

func NewFeeRepository(config ...interface{}) (domain.FeeRepository, error) {
	baseDir, logger, err := parseConfig(config...)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, feeStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open fee store: %s", err)
	}

	return &feeRepository{store}, nil
}

func (r *feeRepository) Get(ctx context.Context) (*domain.FeeLedger, error) {
	var ledger domain.FeeLedger
	err := r.store.Get(feeKey, &ledger)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return &domain.FeeLedger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fee ledger: %w", err)
	}
	return &ledger, nil
}

func (r *feeRepository) Add(ctx context.Context, amount uint64) error {
	return r.update(ctx, func(ledger *domain.FeeLedger) error {
		ledger.Accrued += amount
		return nil
	})
}

func (r *feeRepository) Withdraw(ctx context.Context, amount uint64) error {
	return r.update(ctx, func(ledger *domain.FeeLedger) error {
		if amount > ledger.Balance() {
			return fmt.Errorf("withdrawal of %d exceeds balance %d", amount, ledger.Balance())
		}
		ledger.Withdrawn += amount
		return nil
	})
}

func (r *feeRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *feeRepository) update(
	ctx context.Context, apply func(*domain.FeeLedger) error,
) error {
	ledger, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if err := apply(ledger); err != nil {
		return err
	}
	if err := r.store.Upsert(feeKey, ledger); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(feeKey, ledger)
				attempts++
			}
		}
		return err
	}
	return nil
}
