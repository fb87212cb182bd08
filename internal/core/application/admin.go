package application

import (
	"context"
	"math/big"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	"github.com/Bedrock-Technology/uniBTC/pkg/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type AdminService interface {
	RegisterToken(
		ctx context.Context, caller Caller,
		address string, quotaPerSecond, maxFreeQuota uint64,
	) error
	AddWrappedAssets(ctx context.Context, caller Caller, tokens []string) error
	RemoveWrappedAssets(ctx context.Context, caller Caller, tokens []string) error
	PauseTokens(ctx context.Context, caller Caller, tokens []string) error
	UnpauseTokens(ctx context.Context, caller Caller, tokens []string) error
	SetQuotaPerSecond(ctx context.Context, caller Caller, token string, rate uint64) error
	SetMaxFreeQuota(ctx context.Context, caller Caller, token string, quota uint64) error
	SetRedeemFeeRate(ctx context.Context, caller Caller, rate uint64) error
	SetRedeemDelay(ctx context.Context, caller Caller, delay int64) error
	SetRedeemPrincipalDelay(ctx context.Context, caller Caller, delay int64) error
	AddToWhitelist(ctx context.Context, caller Caller, accounts []string) error
	RemoveFromWhitelist(ctx context.Context, caller Caller, accounts []string) error
	AddToBlacklist(ctx context.Context, caller Caller, accounts []string) error
	RemoveFromBlacklist(ctx context.Context, caller Caller, accounts []string) error
	SetWhitelistEnabled(ctx context.Context, caller Caller, enabled bool) error
	WithdrawManagementFee(
		ctx context.Context, caller Caller, recipient string, amount uint64,
	) error
}

type adminService struct {
	repoManager  ports.RepoManager
	vault        ports.VaultService
	wrappedToken ports.WrappedTokenService
	liveStore    ports.LiveStore

	now func() int64
}

func NewAdminService(
	repoManager ports.RepoManager, vaultSvc ports.VaultService,
	wrappedTokenSvc ports.WrappedTokenService, liveStoreSvc ports.LiveStore,
) AdminService {
	return &adminService{
		repoManager:  repoManager,
		vault:        vaultSvc,
		wrappedToken: wrappedTokenSvc,
		liveStore:    liveStoreSvc,
		now:          func() int64 { return time.Now().Unix() },
	}
}

func (a *adminService) RegisterToken(
	ctx context.Context, caller Caller,
	address string, quotaPerSecond, maxFreeQuota uint64,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	if address == "" {
		return errors.INVALID_INPUT.New("missing token address")
	}

	decimals := uint8(domain.WrappedTokenDecimals)
	if address != domain.NativeToken {
		d, err := a.vault.DecimalsOf(ctx, address)
		if err != nil {
			return errors.INTERNAL_ERROR.Wrap(err)
		}
		decimals = d
	} else {
		decimals = 18
	}

	token := domain.Token{
		Address:        address,
		Decimals:       decimals,
		Listed:         false,
		QuotaPerSecond: quotaPerSecond,
		MaxFreeQuota:   maxFreeQuota,
	}
	if err := a.repoManager.Tokens().Upsert(ctx, token); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	// rate accrual starts now, with an empty bucket
	if err := a.repoManager.Quotas().Upsert(
		ctx, *domain.NewQuotaState(address, a.now()),
	); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}

	log.WithFields(log.Fields{
		"token":    address,
		"decimals": decimals,
		"rate":     quotaPerSecond,
		"quota":    maxFreeQuota,
	}).Info("registered token")
	return nil
}

func (a *adminService) AddWrappedAssets(
	ctx context.Context, caller Caller, tokens []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Tokens().UpdateListed(ctx, tokens, true)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.WrappedAssetListAdded{
			Type: domain.EventTypeWrappedAssetListAdded, Id: uuid.NewString(),
			Tokens: changed,
		})
	}
	return nil
}

func (a *adminService) RemoveWrappedAssets(
	ctx context.Context, caller Caller, tokens []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Tokens().UpdateListed(ctx, tokens, false)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.WrappedAssetListRemoved{
			Type: domain.EventTypeWrappedAssetListRemoved, Id: uuid.NewString(),
			Tokens: changed,
		})
	}
	return nil
}

func (a *adminService) PauseTokens(
	ctx context.Context, caller Caller, tokens []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Tokens().UpdatePaused(ctx, tokens, true)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.TokensPaused{
			Type: domain.EventTypeTokensPaused, Id: uuid.NewString(), Tokens: changed,
		})
	}
	return nil
}

func (a *adminService) UnpauseTokens(
	ctx context.Context, caller Caller, tokens []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Tokens().UpdatePaused(ctx, tokens, false)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.TokensUnpaused{
			Type: domain.EventTypeTokensUnpaused, Id: uuid.NewString(), Tokens: changed,
		})
	}
	return nil
}

func (a *adminService) SetQuotaPerSecond(
	ctx context.Context, caller Caller, tokenAddr string, rate uint64,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	token, err := a.getToken(ctx, tokenAddr)
	if err != nil {
		return err
	}
	previous := token.QuotaPerSecond
	if previous == rate {
		return nil
	}

	// bank what the old rate earned before it stops applying
	if err := a.settleQuota(ctx, *token); err != nil {
		return err
	}

	token.QuotaPerSecond = rate
	if err := a.repoManager.Tokens().Upsert(ctx, *token); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	a.saveEvents(ctx, domain.QuotaRateSet{
		Type: domain.EventTypeQuotaRateSet, Id: uuid.NewString(),
		Token: tokenAddr, PreviousRate: previous, NewRate: rate,
	})
	return nil
}

func (a *adminService) SetMaxFreeQuota(
	ctx context.Context, caller Caller, tokenAddr string, quota uint64,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	token, err := a.getToken(ctx, tokenAddr)
	if err != nil {
		return err
	}
	previous := token.MaxFreeQuota
	if previous == quota {
		return nil
	}

	if err := a.settleQuota(ctx, *token); err != nil {
		return err
	}

	token.MaxFreeQuota = quota
	if err := a.repoManager.Tokens().Upsert(ctx, *token); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	a.saveEvents(ctx, domain.MaxFreeQuotaSet{
		Type: domain.EventTypeMaxFreeQuotaSet, Id: uuid.NewString(),
		Token: tokenAddr, PreviousQuota: previous, NewQuota: quota,
	})
	return nil
}

func (a *adminService) SetRedeemFeeRate(
	ctx context.Context, caller Caller, rate uint64,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	if rate > domain.RedeemFeeRateRange {
		return errors.INVALID_INPUT.New(
			"fee rate %d exceeds range %d", rate, domain.RedeemFeeRateRange,
		).WithMetadata(errors.AmountMetadata{Amount: rate})
	}
	settings, err := a.repoManager.Settings().Get(ctx)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	previous := settings.RedeemFeeRate
	settings.RedeemFeeRate = rate
	settings.UpdatedAt = time.Now()
	if err := a.repoManager.Settings().Upsert(ctx, *settings); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	a.saveEvents(ctx, domain.RedeemFeeRateSet{
		Type: domain.EventTypeRedeemFeeRateSet, Id: uuid.NewString(),
		PreviousFeeRate: previous, NewFeeRate: rate,
	})
	return nil
}

func (a *adminService) SetRedeemDelay(
	ctx context.Context, caller Caller, delay int64,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	settings, err := a.repoManager.Settings().Get(ctx)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	previous := settings.RedeemDelay
	settings.RedeemDelay = delay
	settings.UpdatedAt = time.Now()
	if err := settings.Validate(); err != nil {
		return errors.INVALID_DELAY.Wrap(err).
			WithMetadata(errors.DelayMetadata{Delay: uint64(max(delay, 0))})
	}
	if err := a.repoManager.Settings().Upsert(ctx, *settings); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	a.saveEvents(ctx, domain.RedeemDelaySet{
		Type: domain.EventTypeRedeemDelaySet, Id: uuid.NewString(),
		PreviousDelay: previous, NewDelay: delay,
	})
	return nil
}

func (a *adminService) SetRedeemPrincipalDelay(
	ctx context.Context, caller Caller, delay int64,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	settings, err := a.repoManager.Settings().Get(ctx)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	previous := settings.RedeemPrincipalDelay
	settings.RedeemPrincipalDelay = delay
	settings.UpdatedAt = time.Now()
	if err := settings.Validate(); err != nil {
		return errors.INVALID_DELAY.Wrap(err).
			WithMetadata(errors.DelayMetadata{Delay: uint64(max(delay, 0))})
	}
	if err := a.repoManager.Settings().Upsert(ctx, *settings); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	a.saveEvents(ctx, domain.RedeemPrincipalDelaySet{
		Type: domain.EventTypeRedeemPrincipalDelaySet, Id: uuid.NewString(),
		PreviousDelay: previous, NewDelay: delay,
	})
	return nil
}

func (a *adminService) AddToWhitelist(
	ctx context.Context, caller Caller, accounts []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Policy().AddToWhitelist(ctx, accounts)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.WhitelistAdded{
			Type: domain.EventTypeWhitelistAdded, Id: uuid.NewString(), Accounts: changed,
		})
	}
	return nil
}

func (a *adminService) RemoveFromWhitelist(
	ctx context.Context, caller Caller, accounts []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Policy().RemoveFromWhitelist(ctx, accounts)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.WhitelistRemoved{
			Type: domain.EventTypeWhitelistRemoved, Id: uuid.NewString(), Accounts: changed,
		})
	}
	return nil
}

func (a *adminService) AddToBlacklist(
	ctx context.Context, caller Caller, accounts []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Policy().AddToBlacklist(ctx, accounts)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.BlacklistAdded{
			Type: domain.EventTypeBlacklistAdded, Id: uuid.NewString(), Accounts: changed,
		})
	}
	return nil
}

func (a *adminService) RemoveFromBlacklist(
	ctx context.Context, caller Caller, accounts []string,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	changed, err := a.repoManager.Policy().RemoveFromBlacklist(ctx, accounts)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(changed) > 0 {
		a.saveEvents(ctx, domain.BlacklistRemoved{
			Type: domain.EventTypeBlacklistRemoved, Id: uuid.NewString(), Accounts: changed,
		})
	}
	return nil
}

func (a *adminService) SetWhitelistEnabled(
	ctx context.Context, caller Caller, enabled bool,
) error {
	if err := requireRole(caller, RoleOperator); err != nil {
		return err
	}
	policy, err := a.repoManager.Policy().Get(ctx)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if policy.WhitelistEnabled == enabled {
		return nil
	}
	if err := a.repoManager.Policy().SetWhitelistEnabled(ctx, enabled); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	a.saveEvents(ctx, domain.WhitelistEnabledSet{
		Type: domain.EventTypeWhitelistEnabledSet, Id: uuid.NewString(),
		Previous: policy.WhitelistEnabled, New: enabled,
	})
	return nil
}

func (a *adminService) WithdrawManagementFee(
	ctx context.Context, caller Caller, recipient string, amount uint64,
) error {
	if err := requireRole(caller, RoleTreasury); err != nil {
		return err
	}
	if recipient == "" || amount == 0 {
		return errors.INVALID_INPUT.New("missing recipient or zero amount").
			WithMetadata(errors.AmountMetadata{Amount: amount})
	}
	ledger, err := a.repoManager.Fees().Get(ctx)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	var balance uint64
	if ledger != nil {
		balance = ledger.Balance()
	}
	if amount > balance {
		return errors.INSUFFICIENT_FUNDS.New(
			"withdrawal of %d exceeds accrued fees", amount,
		).WithMetadata(errors.FundsMetadata{
			Requested: new(big.Int).SetUint64(amount).String(),
			Available: new(big.Int).SetUint64(balance).String(),
		})
	}

	if err := a.wrappedToken.Transfer(ctx, recipient, amount); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if err := a.repoManager.Fees().Withdraw(ctx, amount); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	a.saveEvents(ctx, domain.ManagementFeeWithdrawn{
		Type: domain.EventTypeManagementFeeWithdrawn, Id: uuid.NewString(),
		Recipient: recipient, Amount: amount,
	})

	log.WithFields(log.Fields{
		"recipient": recipient,
		"amount":    amount,
	}).Info("withdrew management fee")
	return nil
}

func (a *adminService) getToken(
	ctx context.Context, address string,
) (*domain.Token, error) {
	token, err := a.repoManager.Tokens().Get(ctx, address)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if token == nil {
		return nil, errors.TOKEN_NOT_ALLOWED.New(
			"unknown token %s", address,
		).WithMetadata(errors.TokenMetadata{Token: address})
	}
	return token, nil
}

// settleQuota persists the bucket with accrual applied under the token's
// current parameters, so a retune never applies retroactively.
func (a *adminService) settleQuota(ctx context.Context, token domain.Token) error {
	quota, err := a.repoManager.Quotas().Get(ctx, token.Address)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	now := a.now()
	if quota == nil {
		quota = domain.NewQuotaState(token.Address, now)
	}
	quota.Accrue(token.QuotaPerSecond, token.MaxFreeQuota, now)
	if err := a.repoManager.Quotas().Upsert(ctx, *quota); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if err := a.liveStore.QuotaCache().Set(ctx, token.Address, quota.Available); err != nil {
		log.WithError(err).Warn("failed to refresh quota cache")
	}
	return nil
}

func (a *adminService) saveEvents(ctx context.Context, events ...domain.Event) {
	if err := a.repoManager.Events().Save(
		ctx, domain.AdminTopic, uuid.NewString(), events,
	); err != nil {
		log.WithError(err).Warn("failed to save admin events")
	}
}

func requireRole(caller Caller, role string) error {
	if !caller.Can(role) {
		return errors.UNAUTHORIZED.New(
			"account %s lacks the %s role", caller.Account, role,
		).WithMetadata(errors.RoleMetadata{Required: role})
	}
	return nil
}
