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

const debtStoreDir = "debts"

type debtRepository struct {
	store *badgerhold.Store
}

func NewDebtRepository(config ...interface{}) (domain.DebtRepository, error) {
	baseDir, logger, err := parseConfig(config...)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, debtStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open debt store: %s", err)
	}

	return &debtRepository{store}, nil
}

func (r *debtRepository) Get(ctx context.Context, token string) (*domain.TokenDebt, error) {
	var debt domain.TokenDebt
	err := r.store.Get(token, &debt)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token debt: %w", err)
	}
	return &debt, nil
}

func (r *debtRepository) GetAll(ctx context.Context) ([]domain.TokenDebt, error) {
	var debts []domain.TokenDebt
	if err := r.store.Find(&debts, nil); err != nil {
		return nil, fmt.Errorf("failed to list token debts: %w", err)
	}
	sort.Slice(debts, func(i, j int) bool { return debts[i].Token < debts[j].Token })
	return debts, nil
}

func (r *debtRepository) AddTotal(ctx context.Context, token string, amount uint64) error {
	return r.update(ctx, token, func(debt *domain.TokenDebt) {
		debt.TotalAmount += amount
	})
}

func (r *debtRepository) AddClaimed(ctx context.Context, token string, amount uint64) error {
	return r.update(ctx, token, func(debt *domain.TokenDebt) {
		debt.ClaimedAmount += amount
	})
}

func (r *debtRepository) AddPrincipal(
	ctx context.Context, token string, amount uint64,
) error {
	return r.update(ctx, token, func(debt *domain.TokenDebt) {
		debt.PrincipalAmount += amount
	})
}

func (r *debtRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *debtRepository) update(
	ctx context.Context, token string, apply func(*domain.TokenDebt),
) error {
	debt, err := r.Get(ctx, token)
	if err != nil {
		return err
	}
	if debt == nil {
		debt = &domain.TokenDebt{Token: token}
	}
	apply(debt)
	if err := r.store.Upsert(token, debt); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(token, debt)
				attempts++
			}
		}
		return err
	}
	return nil
}
