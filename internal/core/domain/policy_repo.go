package domain

import "context"

type PolicyRepository interface {
	Get(ctx context.Context) (*AccessPolicy, error)
	// AddToWhitelist returns the accounts that were not already present.
	AddToWhitelist(ctx context.Context, accounts []string) ([]string, error)
	RemoveFromWhitelist(ctx context.Context, accounts []string) ([]string, error)
	AddToBlacklist(ctx context.Context, accounts []string) ([]string, error)
	RemoveFromBlacklist(ctx context.Context, accounts []string) ([]string, error)
	SetWhitelistEnabled(ctx context.Context, enabled bool) error
	Close()
}
