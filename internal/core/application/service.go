package application

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	"github.com/Bedrock-Technology/uniBTC/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateDelayedRedeem(
		ctx context.Context, caller Caller, token string, amount uint64,
	) (uint64, error)
	ClaimDelayedRedeems(ctx context.Context, recipient string) (*ClaimSummary, error)
	ClaimDelayedRedeemByIndex(
		ctx context.Context, recipient string, index uint64,
	) (*ClaimSummary, error)
	ClaimPrincipals(ctx context.Context, recipient string) (*ClaimSummary, error)

	QuotaAvailable(ctx context.Context, token string) (uint64, error)
	GetToken(ctx context.Context, address string) (*TokenInfo, error)
	GetTokens(ctx context.Context) ([]TokenInfo, error)
	GetUserDelayedRedeems(ctx context.Context, recipient string) ([]DelayedRedeemInfo, error)
	UserRedeemsLength(ctx context.Context, recipient string) (uint64, error)
	UserRedeemByIndex(
		ctx context.Context, recipient string, index uint64,
	) (*DelayedRedeemInfo, error)
	CanClaimDelayedRedeem(ctx context.Context, recipient string, index uint64) (bool, error)
	CanClaimDelayedRedeemPrincipal(
		ctx context.Context, recipient string, index uint64,
	) (bool, error)
	GetTokenDebt(ctx context.Context, token string) (*TokenDebtInfo, error)
	GetTokenDebts(ctx context.Context) ([]TokenDebtInfo, error)
	ManagementFeeBalance(ctx context.Context) (uint64, error)
	GetSettings(ctx context.Context) (*domain.Settings, error)
	GetPolicy(ctx context.Context) (*PolicyInfo, error)
}

type service struct {
	repoManager  ports.RepoManager
	vault        ports.VaultService
	wrappedToken ports.WrappedTokenService
	liveStore    ports.LiveStore
	alerts       ports.Alerts

	// routerAccount is the service's own account on the wrapped-token
	// ledger, holder of pulled principals and retained fees.
	routerAccount            string
	largeRedemptionThreshold uint64

	// ledgerLock serializes quota consumption and debt bookkeeping so
	// concurrent requests observe first-come-first-served semantics.
	ledgerLock sync.Mutex

	now func() int64
}

func NewService(
	repoManager ports.RepoManager,
	vaultSvc ports.VaultService, wrappedTokenSvc ports.WrappedTokenService,
	liveStoreSvc ports.LiveStore, alertsSvc ports.Alerts,
	routerAccount string, defaults *domain.Settings, largeRedemptionThreshold uint64,
) (Service, error) {
	svc := &service{
		repoManager:              repoManager,
		vault:                    vaultSvc,
		wrappedToken:             wrappedTokenSvc,
		liveStore:                liveStoreSvc,
		alerts:                   alertsSvc,
		routerAccount:            routerAccount,
		largeRedemptionThreshold: largeRedemptionThreshold,
		now:                      func() int64 { return time.Now().Unix() },
	}

	ctx := context.Background()
	settings, err := repoManager.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		if defaults == nil {
			defaults = domain.NewSettings(
				domain.DefaultRedeemFeeRate, 0, 86400, 86400, 0,
			)
		}
		if err := defaults.Validate(); err != nil {
			return nil, err
		}
		defaults.UpdatedAt = time.Now()
		if err := repoManager.Settings().Upsert(ctx, *defaults); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func (s *service) CreateDelayedRedeem(
	ctx context.Context, caller Caller, tokenAddr string, amount uint64,
) (uint64, error) {
	release, err := s.liveStore.ClaimGuards().Acquire(ctx, caller.Account)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	defer release()

	policy, err := s.repoManager.Policy().Get(ctx)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if !policy.AllowsRecipient(caller.Account) {
		return 0, errors.POLICY_VIOLATION.New(
			"account %s is not allowed to redeem", caller.Account,
		).WithMetadata(errors.RecipientMetadata{Recipient: caller.Account})
	}

	settings, err := s.repoManager.Settings().Get(ctx)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if amount == 0 || amount < settings.MinRedeemAmount {
		return 0, errors.INVALID_INPUT.New(
			"redeem amount %d below minimum %d", amount, settings.MinRedeemAmount,
		).WithMetadata(errors.AmountMetadata{Amount: amount})
	}

	token, err := s.repoManager.Tokens().Get(ctx, tokenAddr)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if token == nil || !token.Redeemable() {
		return 0, errors.TOKEN_NOT_ALLOWED.New(
			"token %s is not redeemable", tokenAddr,
		).WithMetadata(errors.TokenMetadata{Token: tokenAddr})
	}

	now := s.now()

	s.ledgerLock.Lock()
	defer s.ledgerLock.Unlock()

	quota, err := s.repoManager.Quotas().Get(ctx, tokenAddr)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if quota == nil {
		quota = domain.NewQuotaState(tokenAddr, now)
	}
	quota.Accrue(token.QuotaPerSecond, token.MaxFreeQuota, now)
	if !quota.Consume(amount) {
		// nothing persisted, the banked quota is left untouched
		return 0, errors.INSUFFICIENT_QUOTA.New(
			"quota exhausted for token %s", tokenAddr,
		).WithMetadata(errors.QuotaMetadata{
			Token: tokenAddr, Requested: amount, Available: quota.Available,
		})
	}

	if err := s.checkWrappedFunds(ctx, caller.Account, tokenAddr, amount); err != nil {
		return 0, err
	}

	owed, fee := domain.AmountOwed(amount, settings.RedeemFeeRate)

	// pull the full amount, then burn the owed principal; the retained fee
	// stays on the router account until withdrawn
	if err := s.wrappedToken.TransferFrom(
		ctx, caller.Account, s.routerAccount, amount,
	); err != nil {
		return 0, errors.INSUFFICIENT_FUNDS.Wrap(err)
	}
	if err := s.wrappedToken.Burn(ctx, owed); err != nil {
		if refundErr := s.wrappedToken.Transfer(ctx, caller.Account, amount); refundErr != nil {
			log.WithError(refundErr).WithField("account", caller.Account).
				Error("failed to refund pulled tokens after burn failure")
		}
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}

	redeem := domain.NewDelayedRedeem(caller.Account, tokenAddr, owed, now)
	index, err := s.repoManager.Redeems().Append(ctx, redeem)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if err := s.repoManager.Debts().AddTotal(ctx, tokenAddr, owed); err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if fee > 0 {
		if err := s.repoManager.Fees().Add(ctx, fee); err != nil {
			return 0, errors.INTERNAL_ERROR.Wrap(err)
		}
	}
	if err := s.repoManager.Quotas().Upsert(ctx, *quota); err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if err := s.liveStore.QuotaCache().Set(ctx, tokenAddr, quota.Available); err != nil {
		log.WithError(err).Warn("failed to refresh quota cache")
	}

	s.saveEvents(ctx, domain.RedeemTopic, caller.Account, domain.DelayedRedeemCreated{
		Type:      domain.EventTypeDelayedRedeemCreated,
		Id:        redeem.Id,
		Recipient: caller.Account,
		Token:     tokenAddr,
		Amount:    owed,
		Fee:       fee,
		Index:     index,
		CreatedAt: now,
	})

	if s.alerts != nil && s.largeRedemptionThreshold > 0 && amount >= s.largeRedemptionThreshold {
		alert := ports.LargeRedemptionAlert{
			Recipient: caller.Account, Token: tokenAddr, Amount: amount,
		}
		go func() {
			if err := s.alerts.Publish(
				context.Background(), ports.LargeRedemption, alert,
			); err != nil {
				log.WithError(err).Warn("failed to publish large redemption alert")
			}
		}()
	}

	log.WithFields(log.Fields{
		"recipient": caller.Account,
		"token":     tokenAddr,
		"amount":    owed,
		"fee":       fee,
		"index":     index,
	}).Debug("created delayed redeem")
	return index, nil
}

func (s *service) ClaimDelayedRedeems(
	ctx context.Context, recipient string,
) (*ClaimSummary, error) {
	return s.claimAssets(ctx, recipient, nil)
}

func (s *service) ClaimDelayedRedeemByIndex(
	ctx context.Context, recipient string, index uint64,
) (*ClaimSummary, error) {
	return s.claimAssets(ctx, recipient, &index)
}

// claimAssets settles matured slots by paying the underlying asset. With a
// nil index it sweeps every eligible slot and is a no-op when none matured;
// with an index it settles that single slot or fails.
func (s *service) claimAssets(
	ctx context.Context, recipient string, index *uint64,
) (*ClaimSummary, error) {
	release, err := s.liveStore.ClaimGuards().Acquire(ctx, recipient)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	defer release()

	queue, settings, err := s.claimableQueue(ctx, recipient)
	if err != nil {
		return nil, err
	}

	now := s.now()
	type slot struct {
		redeem domain.DelayedRedeem
		index  uint64
	}
	var selected []slot
	if index != nil {
		if *index >= uint64(len(queue)) {
			return nil, errors.REDEEM_NOT_FOUND.New(
				"no delayed redeem at index %d for %s", *index, recipient,
			).WithMetadata(errors.RedeemMetadata{Recipient: recipient, Index: *index})
		}
		if !queue[*index].Claimable(settings.RedeemDelay, now) {
			return nil, errors.NOT_YET_ELIGIBLE.New(
				"delayed redeem %d for %s has not matured", *index, recipient,
			).WithMetadata(errors.RedeemMetadata{Recipient: recipient, Index: *index})
		}
		selected = []slot{{queue[*index], *index}}
	} else {
		for i, d := range queue {
			if d.Claimable(settings.RedeemDelay, now) {
				selected = append(selected, slot{d, uint64(i)})
			}
		}
		if len(selected) == 0 {
			return &ClaimSummary{Recipient: recipient}, nil
		}
	}

	tokens, err := s.touchedTokens(ctx, func(yield func(string)) {
		for _, sl := range selected {
			yield(sl.redeem.Token)
		}
	})
	if err != nil {
		return nil, err
	}

	// liquidity check per asset before any payout
	owedUnderlying := make(map[string]*big.Int)
	for _, sl := range selected {
		token := tokens[sl.redeem.Token]
		amount := token.UnderlyingAmount(sl.redeem.Amount)
		if total, ok := owedUnderlying[sl.redeem.Token]; ok {
			total.Add(total, amount)
		} else {
			owedUnderlying[sl.redeem.Token] = amount
		}
	}
	for addr, owed := range owedUnderlying {
		reserve, err := s.vault.BalanceOf(ctx, addr)
		if err != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(err)
		}
		if reserve.Cmp(owed) < 0 {
			return nil, errors.INSUFFICIENT_FUNDS.New(
				"vault reserve of %s cannot cover claim", addr,
			).WithMetadata(errors.FundsMetadata{
				Token: addr, Requested: owed.String(), Available: reserve.String(),
			})
		}
	}

	summary := &ClaimSummary{Recipient: recipient}
	events := make([]domain.Event, 0, len(selected)+1)
	claimedPerToken := make(map[string]uint64)
	settledIds := make([]string, 0, len(selected))
	var payErr error
	for _, sl := range selected {
		token := tokens[sl.redeem.Token]
		amount := token.UnderlyingAmount(sl.redeem.Amount)
		if err := s.vault.PayUnderlying(ctx, sl.redeem.Token, recipient, amount); err != nil {
			payErr = err
			break
		}
		summary.Claimed = append(summary.Claimed, ClaimedRedeem{
			Index: sl.index, Token: sl.redeem.Token, AmountPaid: amount.String(),
		})
		summary.AmountSettled += sl.redeem.Amount
		claimedPerToken[sl.redeem.Token] += sl.redeem.Amount
		settledIds = append(settledIds, sl.redeem.Id)
		events = append(events, domain.DelayedRedeemsClaimed{
			Type:          domain.EventTypeDelayedRedeemsClaimed,
			Id:            sl.redeem.Id,
			Recipient:     recipient,
			Token:         sl.redeem.Token,
			AmountClaimed: amount.String(),
		})
	}

	// the paid prefix is recorded even when a later payout failed
	if len(settledIds) > 0 {
		s.ledgerLock.Lock()
		for addr, amount := range claimedPerToken {
			if err := s.repoManager.Debts().AddClaimed(ctx, addr, amount); err != nil {
				s.ledgerLock.Unlock()
				return nil, errors.INTERNAL_ERROR.Wrap(err)
			}
		}
		s.ledgerLock.Unlock()
		if err := s.repoManager.Redeems().Remove(ctx, recipient, settledIds); err != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(err)
		}
		events = append(events, domain.DelayedRedeemsCompleted{
			Type:             domain.EventTypeDelayedRedeemsCompleted,
			Id:               recipient,
			Recipient:        recipient,
			AmountBurned:     summary.AmountSettled,
			RedeemsCompleted: uint64(len(settledIds)),
		})
		s.saveEvents(ctx, domain.RedeemTopic, recipient, events...)
	}
	if payErr != nil {
		return summary, errors.INTERNAL_ERROR.Wrap(payErr)
	}

	log.WithFields(log.Fields{
		"recipient": recipient,
		"count":     len(settledIds),
		"settled":   summary.AmountSettled,
	}).Debug("claimed delayed redeems")
	return summary, nil
}

func (s *service) ClaimPrincipals(
	ctx context.Context, recipient string,
) (*ClaimSummary, error) {
	release, err := s.liveStore.ClaimGuards().Acquire(ctx, recipient)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	defer release()

	queue, settings, err := s.claimableQueue(ctx, recipient)
	if err != nil {
		return nil, err
	}

	now := s.now()
	eligible := make([]domain.DelayedRedeem, 0, len(queue))
	indexes := make([]uint64, 0, len(queue))
	for i, d := range queue {
		if d.PrincipalClaimable(settings.RedeemPrincipalDelay, now) {
			eligible = append(eligible, d)
			indexes = append(indexes, uint64(i))
		}
	}
	if len(eligible) == 0 {
		return &ClaimSummary{Recipient: recipient}, nil
	}

	if _, err := s.touchedTokens(ctx, func(yield func(string)) {
		for _, d := range eligible {
			yield(d.Token)
		}
	}); err != nil {
		return nil, err
	}

	var total uint64
	perToken := make(map[string]uint64)
	tokenOrder := make([]string, 0, len(eligible))
	ids := make([]string, 0, len(eligible))
	for _, d := range eligible {
		if _, seen := perToken[d.Token]; !seen {
			tokenOrder = append(tokenOrder, d.Token)
		}
		perToken[d.Token] += d.Amount
		total += d.Amount
		ids = append(ids, d.Id)
	}

	// mint the whole batch back in one call, the wrapped token is fungible
	// across assets
	if err := s.wrappedToken.Mint(ctx, recipient, total); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}

	s.ledgerLock.Lock()
	for _, addr := range tokenOrder {
		if err := s.repoManager.Debts().AddPrincipal(ctx, addr, perToken[addr]); err != nil {
			s.ledgerLock.Unlock()
			return nil, errors.INTERNAL_ERROR.Wrap(err)
		}
	}
	s.ledgerLock.Unlock()
	if err := s.repoManager.Redeems().Remove(ctx, recipient, ids); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}

	summary := &ClaimSummary{Recipient: recipient, AmountSettled: total}
	events := make([]domain.Event, 0, len(tokenOrder)+1)
	for i, d := range eligible {
		summary.Claimed = append(summary.Claimed, ClaimedRedeem{
			Index: indexes[i], Token: d.Token,
			AmountPaid: new(big.Int).SetUint64(d.Amount).String(),
		})
	}
	for _, addr := range tokenOrder {
		events = append(events, domain.DelayedRedeemsPrincipalClaimed{
			Type:          domain.EventTypeDelayedRedeemsPrincipalClaimed,
			Id:            recipient,
			Recipient:     recipient,
			Token:         addr,
			ClaimedAmount: perToken[addr],
		})
	}
	events = append(events, domain.DelayedRedeemsPrincipalCompleted{
		Type:             domain.EventTypeDelayedRedeemsPrincipalCompleted,
		Id:               recipient,
		Recipient:        recipient,
		PrincipalAmount:  total,
		RedeemsCompleted: uint64(len(ids)),
	})
	s.saveEvents(ctx, domain.RedeemTopic, recipient, events...)

	log.WithFields(log.Fields{
		"recipient": recipient,
		"count":     len(ids),
		"principal": total,
	}).Debug("claimed principals")
	return summary, nil
}

func (s *service) QuotaAvailable(ctx context.Context, tokenAddr string) (uint64, error) {
	token, err := s.repoManager.Tokens().Get(ctx, tokenAddr)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if token == nil {
		return 0, errors.TOKEN_NOT_ALLOWED.New(
			"unknown token %s", tokenAddr,
		).WithMetadata(errors.TokenMetadata{Token: tokenAddr})
	}
	available, err := s.liveQuota(ctx, *token)
	if err != nil {
		return 0, err
	}
	if err := s.liveStore.QuotaCache().Set(ctx, tokenAddr, available); err != nil {
		log.WithError(err).Warn("failed to refresh quota cache")
	}
	return available, nil
}

func (s *service) GetToken(ctx context.Context, address string) (*TokenInfo, error) {
	token, err := s.repoManager.Tokens().Get(ctx, address)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if token == nil {
		return nil, errors.TOKEN_NOT_ALLOWED.New(
			"unknown token %s", address,
		).WithMetadata(errors.TokenMetadata{Token: address})
	}
	available, err := s.liveQuota(ctx, *token)
	if err != nil {
		return nil, err
	}
	info := newTokenInfo(*token, available)
	return &info, nil
}

func (s *service) GetTokens(ctx context.Context) ([]TokenInfo, error) {
	tokens, err := s.repoManager.Tokens().GetAll(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	infos := make([]TokenInfo, 0, len(tokens))
	for _, token := range tokens {
		available, err := s.liveQuota(ctx, token)
		if err != nil {
			return nil, err
		}
		infos = append(infos, newTokenInfo(token, available))
	}
	return infos, nil
}

func (s *service) GetUserDelayedRedeems(
	ctx context.Context, recipient string,
) ([]DelayedRedeemInfo, error) {
	queue, err := s.repoManager.Redeems().GetQueue(ctx, recipient)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	settings, err := s.repoManager.Settings().Get(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	now := s.now()
	infos := make([]DelayedRedeemInfo, 0, len(queue))
	for i, d := range queue {
		infos = append(infos, DelayedRedeemInfo{
			Index:              uint64(i),
			Token:              d.Token,
			Amount:             d.Amount,
			CreatedAt:          d.CreatedAt,
			Claimable:          d.Claimable(settings.RedeemDelay, now),
			PrincipalClaimable: d.PrincipalClaimable(settings.RedeemPrincipalDelay, now),
		})
	}
	return infos, nil
}

func (s *service) UserRedeemsLength(ctx context.Context, recipient string) (uint64, error) {
	length, err := s.repoManager.Redeems().QueueLength(ctx, recipient)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	return length, nil
}

func (s *service) UserRedeemByIndex(
	ctx context.Context, recipient string, index uint64,
) (*DelayedRedeemInfo, error) {
	redeem, err := s.repoManager.Redeems().GetByIndex(ctx, recipient, index)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if redeem == nil {
		return nil, errors.REDEEM_NOT_FOUND.New(
			"no delayed redeem at index %d for %s", index, recipient,
		).WithMetadata(errors.RedeemMetadata{Recipient: recipient, Index: index})
	}
	settings, err := s.repoManager.Settings().Get(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	now := s.now()
	return &DelayedRedeemInfo{
		Index:              index,
		Token:              redeem.Token,
		Amount:             redeem.Amount,
		CreatedAt:          redeem.CreatedAt,
		Claimable:          redeem.Claimable(settings.RedeemDelay, now),
		PrincipalClaimable: redeem.PrincipalClaimable(settings.RedeemPrincipalDelay, now),
	}, nil
}

func (s *service) CanClaimDelayedRedeem(
	ctx context.Context, recipient string, index uint64,
) (bool, error) {
	info, err := s.UserRedeemByIndex(ctx, recipient, index)
	if err != nil {
		return false, err
	}
	return info.Claimable, nil
}

func (s *service) CanClaimDelayedRedeemPrincipal(
	ctx context.Context, recipient string, index uint64,
) (bool, error) {
	info, err := s.UserRedeemByIndex(ctx, recipient, index)
	if err != nil {
		return false, err
	}
	return info.PrincipalClaimable, nil
}

func (s *service) GetTokenDebt(ctx context.Context, token string) (*TokenDebtInfo, error) {
	debt, err := s.repoManager.Debts().Get(ctx, token)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if debt == nil {
		debt = &domain.TokenDebt{Token: token}
	}
	info := newTokenDebtInfo(*debt)
	return &info, nil
}

func (s *service) GetTokenDebts(ctx context.Context) ([]TokenDebtInfo, error) {
	debts, err := s.repoManager.Debts().GetAll(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	infos := make([]TokenDebtInfo, 0, len(debts))
	for _, debt := range debts {
		infos = append(infos, newTokenDebtInfo(debt))
	}
	return infos, nil
}

func (s *service) ManagementFeeBalance(ctx context.Context) (uint64, error) {
	ledger, err := s.repoManager.Fees().Get(ctx)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if ledger == nil {
		return 0, nil
	}
	return ledger.Balance(), nil
}

func (s *service) GetSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.repoManager.Settings().Get(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return settings, nil
}

func (s *service) GetPolicy(ctx context.Context) (*PolicyInfo, error) {
	policy, err := s.repoManager.Policy().Get(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	info := &PolicyInfo{WhitelistEnabled: policy.WhitelistEnabled}
	for account := range policy.Whitelist {
		info.Whitelist = append(info.Whitelist, account)
	}
	for account := range policy.Blacklist {
		info.Blacklist = append(info.Blacklist, account)
	}
	return info, nil
}

// claimableQueue runs the checks shared by every claim path and returns the
// recipient's queue with the current settings.
func (s *service) claimableQueue(
	ctx context.Context, recipient string,
) ([]domain.DelayedRedeem, *domain.Settings, error) {
	policy, err := s.repoManager.Policy().Get(ctx)
	if err != nil {
		return nil, nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if !policy.AllowsRecipient(recipient) {
		return nil, nil, errors.POLICY_VIOLATION.New(
			"account %s is not allowed to claim", recipient,
		).WithMetadata(errors.RecipientMetadata{Recipient: recipient})
	}
	settings, err := s.repoManager.Settings().Get(ctx)
	if err != nil {
		return nil, nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	queue, err := s.repoManager.Redeems().GetQueue(ctx, recipient)
	if err != nil {
		return nil, nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return queue, settings, nil
}

// touchedTokens loads every distinct token referenced by a claim batch and
// fails the whole batch if any of them is paused.
func (s *service) touchedTokens(
	ctx context.Context, visit func(yield func(string)),
) (map[string]*domain.Token, error) {
	tokens := make(map[string]*domain.Token)
	var loadErr error
	visit(func(addr string) {
		if loadErr != nil {
			return
		}
		if _, ok := tokens[addr]; ok {
			return
		}
		token, err := s.repoManager.Tokens().Get(ctx, addr)
		if err != nil {
			loadErr = errors.INTERNAL_ERROR.Wrap(err)
			return
		}
		if token == nil || token.Paused {
			loadErr = errors.TOKEN_NOT_ALLOWED.New(
				"token %s is paused", addr,
			).WithMetadata(errors.TokenMetadata{Token: addr})
			return
		}
		tokens[addr] = token
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return tokens, nil
}

// checkWrappedFunds verifies the account holds the wrapped amount and has
// approved the router for it before any pull is attempted.
func (s *service) checkWrappedFunds(
	ctx context.Context, account, tokenAddr string, amount uint64,
) error {
	balance, err := s.wrappedToken.BalanceOf(ctx, account)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	allowance, err := s.wrappedToken.Allowance(ctx, account, s.routerAccount)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	available := balance
	if allowance < available {
		available = allowance
	}
	if available < amount {
		return errors.INSUFFICIENT_FUNDS.New(
			"account %s holds or approved less than %d wrapped units", account, amount,
		).WithMetadata(errors.FundsMetadata{
			Token:     tokenAddr,
			Requested: new(big.Int).SetUint64(amount).String(),
			Available: new(big.Int).SetUint64(available).String(),
		})
	}
	return nil
}

// liveQuota evaluates the bucket with accrual applied at the current time,
// without persisting anything.
func (s *service) liveQuota(ctx context.Context, token domain.Token) (uint64, error) {
	quota, err := s.repoManager.Quotas().Get(ctx, token.Address)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err)
	}
	if quota == nil {
		quota = domain.NewQuotaState(token.Address, s.now())
	}
	quota.Accrue(token.QuotaPerSecond, token.MaxFreeQuota, s.now())
	return quota.Available, nil
}

func (s *service) saveEvents(
	ctx context.Context, topic, id string, events ...domain.Event,
) {
	if err := s.repoManager.Events().Save(ctx, topic, id, events); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to save events")
	}
}

func newTokenInfo(token domain.Token, available uint64) TokenInfo {
	return TokenInfo{
		Address:        token.Address,
		Decimals:       token.Decimals,
		Listed:         token.Listed,
		Paused:         token.Paused,
		QuotaPerSecond: token.QuotaPerSecond,
		MaxFreeQuota:   token.MaxFreeQuota,
		QuotaAvailable: available,
	}
}
