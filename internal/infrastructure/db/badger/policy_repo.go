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
	policyStoreDir = "policy"
	policyKey      = "policy"
)

type policyRepository struct {
	store *badgerhold.Store
}

func NewPolicyRepository(config ...interface{}) (domain.PolicyRepository, error) {
	baseDir, logger, err := parseConfig(config...)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, policyStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy store: %s", err)
	}

	return &policyRepository{store}, nil
}

func (r *policyRepository) Get(ctx context.Context) (*domain.AccessPolicy, error) {
	var policy domain.AccessPolicy
	err := r.store.Get(policyKey, &policy)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return domain.NewAccessPolicy(false), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}
	if policy.Whitelist == nil {
		policy.Whitelist = make(map[string]struct{})
	}
	if policy.Blacklist == nil {
		policy.Blacklist = make(map[string]struct{})
	}
	return &policy, nil
}

func (r *policyRepository) AddToWhitelist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.updateList(ctx, accounts, func(policy *domain.AccessPolicy, account string) bool {
		if _, ok := policy.Whitelist[account]; ok {
			return false
		}
		policy.Whitelist[account] = struct{}{}
		return true
	})
}

func (r *policyRepository) RemoveFromWhitelist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.updateList(ctx, accounts, func(policy *domain.AccessPolicy, account string) bool {
		if _, ok := policy.Whitelist[account]; !ok {
			return false
		}
		delete(policy.Whitelist, account)
		return true
	})
}

func (r *policyRepository) AddToBlacklist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.updateList(ctx, accounts, func(policy *domain.AccessPolicy, account string) bool {
		if _, ok := policy.Blacklist[account]; ok {
			return false
		}
		policy.Blacklist[account] = struct{}{}
		return true
	})
}

func (r *policyRepository) RemoveFromBlacklist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.updateList(ctx, accounts, func(policy *domain.AccessPolicy, account string) bool {
		if _, ok := policy.Blacklist[account]; !ok {
			return false
		}
		delete(policy.Blacklist, account)
		return true
	})
}

func (r *policyRepository) SetWhitelistEnabled(ctx context.Context, enabled bool) error {
	policy, err := r.Get(ctx)
	if err != nil {
		return err
	}
	policy.WhitelistEnabled = enabled
	return r.upsert(policy)
}

func (r *policyRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *policyRepository) updateList(
	ctx context.Context, accounts []string,
	apply func(*domain.AccessPolicy, string) bool,
) ([]string, error) {
	policy, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	changed := make([]string, 0, len(accounts))
	for _, account := range accounts {
		if apply(policy, account) {
			changed = append(changed, account)
		}
	}
	if len(changed) == 0 {
		return changed, nil
	}
	if err := r.upsert(policy); err != nil {
		return nil, err
	}
	return changed, nil
}

func (r *policyRepository) upsert(policy *domain.AccessPolicy) error {
	if err := r.store.Upsert(policyKey, policy); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(policyKey, policy)
				attempts++
			}
		}
		return err
	}
	return nil
}
