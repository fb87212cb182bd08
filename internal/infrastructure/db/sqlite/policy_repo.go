package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/sqlite/sqlc/queries"
)

const (
	whitelistName = "whitelist"
	blacklistName = "blacklist"
)

type policyRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewPolicyRepository(config ...interface{}) (domain.PolicyRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open policy repository: %w", err)
	}

	return &policyRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *policyRepository) Get(ctx context.Context) (*domain.AccessPolicy, error) {
	policy := domain.NewAccessPolicy(false)

	flags, err := r.querier.GetPolicyFlags(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get policy flags: %w", err)
	}
	if err == nil {
		policy.WhitelistEnabled = flags.WhitelistEnabled
	}

	whitelisted, err := r.querier.ListPolicyAccounts(ctx, whitelistName)
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelist: %w", err)
	}
	for _, row := range whitelisted {
		policy.Whitelist[row.Account] = struct{}{}
	}
	blacklisted, err := r.querier.ListPolicyAccounts(ctx, blacklistName)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklist: %w", err)
	}
	for _, row := range blacklisted {
		policy.Blacklist[row.Account] = struct{}{}
	}
	return policy, nil
}

func (r *policyRepository) AddToWhitelist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.insert(ctx, accounts, whitelistName)
}

func (r *policyRepository) RemoveFromWhitelist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.delete(ctx, accounts, whitelistName)
}

func (r *policyRepository) AddToBlacklist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.insert(ctx, accounts, blacklistName)
}

func (r *policyRepository) RemoveFromBlacklist(
	ctx context.Context, accounts []string,
) ([]string, error) {
	return r.delete(ctx, accounts, blacklistName)
}

func (r *policyRepository) SetWhitelistEnabled(ctx context.Context, enabled bool) error {
	return r.querier.SetWhitelistEnabled(ctx, enabled)
}

func (r *policyRepository) Close() {
	_ = r.db.Close()
}

func (r *policyRepository) insert(
	ctx context.Context, accounts []string, list string,
) ([]string, error) {
	changed := make([]string, 0, len(accounts))
	for _, account := range accounts {
		rows, err := r.querier.InsertPolicyAccount(ctx, queries.InsertPolicyAccountParams{
			Account: account,
			List:    list,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add account to %s: %w", list, err)
		}
		if rows > 0 {
			changed = append(changed, account)
		}
	}
	return changed, nil
}

func (r *policyRepository) delete(
	ctx context.Context, accounts []string, list string,
) ([]string, error) {
	changed := make([]string, 0, len(accounts))
	for _, account := range accounts {
		rows, err := r.querier.DeletePolicyAccount(ctx, queries.DeletePolicyAccountParams{
			Account: account,
			List:    list,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to remove account from %s: %w", list, err)
		}
		if rows > 0 {
			changed = append(changed, account)
		}
	}
	return changed, nil
}
