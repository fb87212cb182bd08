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

const redeemStoreDir = "redeems"

type redeemRepository struct {
	store *badgerhold.Store
	seq   *badger.Sequence
}

// redeemDTO carries a monotonic sequence number so queue order survives
// removals. Queue indices are derived from the sequence order, never stored.
type redeemDTO struct {
	domain.DelayedRedeem
	Seq uint64
}

func NewRedeemRepository(config ...interface{}) (domain.RedeemRepository, error) {
	baseDir, logger, err := parseConfig(config...)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, redeemStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open redeem store: %s", err)
	}
	seq, err := store.Badger().GetSequence([]byte("redeem_seq"), 100)
	if err != nil {
		return nil, fmt.Errorf("failed to open redeem sequence: %s", err)
	}

	return &redeemRepository{store, seq}, nil
}

func (r *redeemRepository) Append(
	ctx context.Context, redeem domain.DelayedRedeem,
) (uint64, error) {
	index, err := r.QueueLength(ctx, redeem.Recipient)
	if err != nil {
		return 0, err
	}
	seq, err := r.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to get next sequence: %w", err)
	}
	dto := redeemDTO{DelayedRedeem: redeem, Seq: seq}
	if err := r.store.Insert(redeem.Id, &dto); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Insert(redeem.Id, &dto)
				attempts++
			}
		}
		if err != nil {
			return 0, fmt.Errorf("failed to insert redeem: %w", err)
		}
	}
	return index, nil
}

func (r *redeemRepository) GetQueue(
	ctx context.Context, recipient string,
) ([]domain.DelayedRedeem, error) {
	var dtos []redeemDTO
	query := badgerhold.Where("Recipient").Eq(recipient)
	if err := r.store.Find(&dtos, query); err != nil {
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}
	return sortedRedeems(dtos), nil
}

func (r *redeemRepository) GetAll(ctx context.Context) ([]domain.DelayedRedeem, error) {
	var dtos []redeemDTO
	if err := r.store.Find(&dtos, nil); err != nil {
		return nil, fmt.Errorf("failed to list redeems: %w", err)
	}
	// creation order across queues, sequence breaks same-second ties
	sort.Slice(dtos, func(i, j int) bool {
		if dtos[i].CreatedAt != dtos[j].CreatedAt {
			return dtos[i].CreatedAt < dtos[j].CreatedAt
		}
		return dtos[i].Seq < dtos[j].Seq
	})
	redeems := make([]domain.DelayedRedeem, 0, len(dtos))
	for _, dto := range dtos {
		redeems = append(redeems, dto.DelayedRedeem)
	}
	return redeems, nil
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
	count, err := r.store.Count(&redeemDTO{}, badgerhold.Where("Recipient").Eq(recipient))
	if err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return count, nil
}

func (r *redeemRepository) Remove(
	ctx context.Context, recipient string, ids []string,
) error {
	for _, id := range ids {
		if err := r.store.Delete(id, &redeemDTO{}); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to remove redeem %s: %w", id, err)
		}
	}
	return nil
}

func (r *redeemRepository) Close() {
	// nolint:all
	r.seq.Release()
	// nolint:all
	r.store.Close()
}

func sortedRedeems(dtos []redeemDTO) []domain.DelayedRedeem {
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Seq < dtos[j].Seq })
	redeems := make([]domain.DelayedRedeem, 0, len(dtos))
	for _, dto := range dtos {
		redeems = append(redeems, dto.DelayedRedeem)
	}
	return redeems
}
