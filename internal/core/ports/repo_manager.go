package ports

import "github.com/Bedrock-Technology/uniBTC/internal/core/domain"

type RepoManager interface {
	Events() domain.EventRepository
	Tokens() domain.TokenRepository
	Quotas() domain.QuotaRepository
	Redeems() domain.RedeemRepository
	Debts() domain.DebtRepository
	Policy() domain.PolicyRepository
	Settings() domain.SettingsRepository
	Fees() domain.FeeRepository
	Close()
}
