package db_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db"
	"github.com/stretchr/testify/require"
)

const (
	wbtc  = "0x1111111111111111111111111111111111111111"
	tbtc  = "0x2222222222222222222222222222222222222222"
	fbtc  = "0x3333333333333333333333333333333333333333"
	alice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	carol = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func TestService(t *testing.T) {
	dbDir := t.TempDir()
	tests := []struct {
		name   string
		config db.ServiceConfig
	}{
		{
			name: "repo_manager_with_badger_stores",
			config: db.ServiceConfig{
				EventStoreType:   "badger",
				DataStoreType:    "badger",
				EventStoreConfig: []interface{}{"", nil},
				DataStoreConfig:  []interface{}{"", nil},
			},
		},
		{
			name: "repo_manager_with_sqlite_stores",
			config: db.ServiceConfig{
				EventStoreType:   "badger",
				DataStoreType:    "sqlite",
				EventStoreConfig: []interface{}{"", nil},
				DataStoreConfig:  []interface{}{dbDir},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := db.NewService(tt.config)
			require.NoError(t, err)
			require.NotNil(t, svc)

			testEventRepository(t, svc)
			testTokenRepository(t, svc)
			testQuotaRepository(t, svc)
			testRedeemRepository(t, svc)
			testDebtRepository(t, svc)
			testPolicyRepository(t, svc)
			testSettingsRepository(t, svc)
			testFeeRepository(t, svc)

			svc.Close()
		})
	}
}

func testEventRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_event_repository", func(t *testing.T) {
		fixtures := []struct {
			topic    string
			id       string
			events   []domain.Event
			handlers []func(events []domain.Event)
		}{
			{
				topic: domain.RedeemTopic,
				id:    "42dd81f7-cadd-482c-bf69-8e9209aae9f3",
				events: []domain.Event{
					domain.DelayedRedeemCreated{
						Type:      domain.EventTypeDelayedRedeemCreated,
						Id:        "42dd81f7-cadd-482c-bf69-8e9209aae9f3",
						Recipient: alice,
						Token:     wbtc,
						Amount:    98_000_000,
						Fee:       2_000_000,
						Index:     0,
						CreatedAt: 1701190270,
					},
				},
				handlers: []func(events []domain.Event){
					func(events []domain.Event) {
						require.Len(t, events, 1)
						event, ok := events[0].(domain.DelayedRedeemCreated)
						require.True(t, ok)
						require.Equal(t, alice, event.Recipient)
						require.Equal(t, uint64(98_000_000), event.Amount)
					},
					func(events []domain.Event) {
						require.Len(t, events, 1)
					},
				},
			},
			{
				topic: domain.RedeemTopic,
				id:    "1ea610ff-bf3e-4068-9bfd-b6c3f553467e",
				events: []domain.Event{
					domain.DelayedRedeemsClaimed{
						Type:          domain.EventTypeDelayedRedeemsClaimed,
						Id:            "1ea610ff-bf3e-4068-9bfd-b6c3f553467e",
						Recipient:     bob,
						Token:         tbtc,
						AmountClaimed: "980000000000000000",
					},
					domain.DelayedRedeemsCompleted{
						Type:             domain.EventTypeDelayedRedeemsCompleted,
						Id:               "1ea610ff-bf3e-4068-9bfd-b6c3f553467e",
						Recipient:        bob,
						AmountBurned:     98_000_000,
						RedeemsCompleted: 1,
					},
				},
				handlers: []func(events []domain.Event){
					func(events []domain.Event) {
						require.Len(t, events, 2)
						require.Equal(
							t, domain.EventTypeDelayedRedeemsClaimed, events[0].GetType(),
						)
						require.Equal(
							t, domain.EventTypeDelayedRedeemsCompleted, events[1].GetType(),
						)
					},
				},
			},
			{
				topic: domain.AdminTopic,
				id:    "7578231e-428d-45ae-aaa4-e62c77ad5cec",
				events: []domain.Event{
					domain.RedeemDelaySet{
						Type:          domain.EventTypeRedeemDelaySet,
						Id:            "7578231e-428d-45ae-aaa4-e62c77ad5cec",
						PreviousDelay: 86400,
						NewDelay:      3600,
					},
				},
				handlers: []func(events []domain.Event){
					func(events []domain.Event) {
						require.Len(t, events, 1)
						event, ok := events[0].(domain.RedeemDelaySet)
						require.True(t, ok)
						require.Equal(t, int64(3600), event.NewDelay)
					},
				},
			},
		}
		ctx := context.Background()

		for _, f := range fixtures {
			svc.Events().ClearRegisteredHandlers()

			wg := sync.WaitGroup{}
			wg.Add(len(f.handlers))

			for _, handler := range f.handlers {
				svc.Events().RegisterEventsHandler(f.topic, func(events []domain.Event) {
					handler(events)
					wg.Done()
				})
			}

			err := svc.Events().Save(ctx, f.topic, f.id, f.events)
			require.NoError(t, err)

			wg.Wait()
		}

		svc.Events().ClearRegisteredHandlers()
	})
}

func testTokenRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_token_repository", func(t *testing.T) {
		ctx := context.Background()

		token, err := svc.Tokens().Get(ctx, wbtc)
		require.NoError(t, err)
		require.Nil(t, token)

		err = svc.Tokens().Upsert(ctx, domain.Token{
			Address:        wbtc,
			Decimals:       8,
			QuotaPerSecond: 1000,
			MaxFreeQuota:   50_000_000,
		})
		require.NoError(t, err)
		err = svc.Tokens().Upsert(ctx, domain.Token{
			Address:        tbtc,
			Decimals:       18,
			QuotaPerSecond: 500,
			MaxFreeQuota:   10_000_000,
		})
		require.NoError(t, err)

		token, err = svc.Tokens().Get(ctx, wbtc)
		require.NoError(t, err)
		require.NotNil(t, token)
		require.Equal(t, uint8(8), token.Decimals)
		require.Equal(t, uint64(1000), token.QuotaPerSecond)
		require.False(t, token.Listed)
		require.False(t, token.Paused)

		tokens, err := svc.Tokens().GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, tokens, 2)

		// Listing both plus an unknown address changes only the known ones.
		changed, err := svc.Tokens().UpdateListed(ctx, []string{wbtc, tbtc, fbtc}, true)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{wbtc, tbtc}, changed)

		// Listing again is a no-op.
		changed, err = svc.Tokens().UpdateListed(ctx, []string{wbtc, tbtc}, true)
		require.NoError(t, err)
		require.Empty(t, changed)

		changed, err = svc.Tokens().UpdatePaused(ctx, []string{wbtc}, true)
		require.NoError(t, err)
		require.Equal(t, []string{wbtc}, changed)

		token, err = svc.Tokens().Get(ctx, wbtc)
		require.NoError(t, err)
		require.True(t, token.Listed)
		require.True(t, token.Paused)
		require.False(t, token.Redeemable())

		changed, err = svc.Tokens().UpdatePaused(ctx, []string{wbtc}, false)
		require.NoError(t, err)
		require.Equal(t, []string{wbtc}, changed)

		token, err = svc.Tokens().Get(ctx, wbtc)
		require.NoError(t, err)
		require.True(t, token.Redeemable())

		// Upsert keeps list and pause state when retuning quotas.
		token.QuotaPerSecond = 2000
		err = svc.Tokens().Upsert(ctx, *token)
		require.NoError(t, err)
		token, err = svc.Tokens().Get(ctx, wbtc)
		require.NoError(t, err)
		require.Equal(t, uint64(2000), token.QuotaPerSecond)
		require.True(t, token.Listed)
	})
}

func testQuotaRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_quota_repository", func(t *testing.T) {
		ctx := context.Background()

		state, err := svc.Quotas().Get(ctx, wbtc)
		require.NoError(t, err)
		require.Nil(t, state)

		err = svc.Quotas().Upsert(ctx, domain.QuotaState{
			Token:         wbtc,
			Available:     42_000_000,
			LastUpdatedAt: 1701190270,
		})
		require.NoError(t, err)

		state, err = svc.Quotas().Get(ctx, wbtc)
		require.NoError(t, err)
		require.NotNil(t, state)
		require.Equal(t, uint64(42_000_000), state.Available)
		require.Equal(t, int64(1701190270), state.LastUpdatedAt)

		state.Available = 0
		state.LastUpdatedAt = 1701190330
		err = svc.Quotas().Upsert(ctx, *state)
		require.NoError(t, err)

		state, err = svc.Quotas().Get(ctx, wbtc)
		require.NoError(t, err)
		require.Zero(t, state.Available)
		require.Equal(t, int64(1701190330), state.LastUpdatedAt)
	})
}

func testRedeemRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_redeem_repository", func(t *testing.T) {
		ctx := context.Background()

		queue, err := svc.Redeems().GetQueue(ctx, alice)
		require.NoError(t, err)
		require.Empty(t, queue)

		length, err := svc.Redeems().QueueLength(ctx, alice)
		require.NoError(t, err)
		require.Zero(t, length)

		missing, err := svc.Redeems().GetByIndex(ctx, alice, 0)
		require.NoError(t, err)
		require.Nil(t, missing)

		aliceRedeems := []domain.DelayedRedeem{
			domain.NewDelayedRedeem(alice, wbtc, 98_000_000, 1000),
			domain.NewDelayedRedeem(alice, tbtc, 49_000_000, 2000),
			domain.NewDelayedRedeem(alice, wbtc, 9_800_000, 3000),
		}
		for i, redeem := range aliceRedeems {
			index, err := svc.Redeems().Append(ctx, redeem)
			require.NoError(t, err)
			require.Equal(t, uint64(i), index)
		}
		// Interleave another recipient, indices are per queue.
		bobRedeem := domain.NewDelayedRedeem(bob, wbtc, 1_000_000, 2500)
		index, err := svc.Redeems().Append(ctx, bobRedeem)
		require.NoError(t, err)
		require.Zero(t, index)

		queue, err = svc.Redeems().GetQueue(ctx, alice)
		require.NoError(t, err)
		require.Len(t, queue, 3)
		for i, redeem := range queue {
			require.Equal(t, aliceRedeems[i].Id, redeem.Id)
			require.Equal(t, aliceRedeems[i].Amount, redeem.Amount)
			require.Equal(t, aliceRedeems[i].CreatedAt, redeem.CreatedAt)
		}

		length, err = svc.Redeems().QueueLength(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(3), length)

		got, err := svc.Redeems().GetByIndex(ctx, alice, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, aliceRedeems[1].Id, got.Id)

		missing, err = svc.Redeems().GetByIndex(ctx, alice, 3)
		require.NoError(t, err)
		require.Nil(t, missing)

		// GetAll spans every queue in creation order.
		all, err := svc.Redeems().GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 4)
		ids := make([]string, 0, len(all))
		for _, redeem := range all {
			ids = append(ids, redeem.Id)
		}
		require.Equal(t, []string{
			aliceRedeems[0].Id, aliceRedeems[1].Id, bobRedeem.Id, aliceRedeems[2].Id,
		}, ids)

		// Removing the head compacts the survivors to indices 0..n-1.
		err = svc.Redeems().Remove(ctx, alice, []string{aliceRedeems[0].Id})
		require.NoError(t, err)

		queue, err = svc.Redeems().GetQueue(ctx, alice)
		require.NoError(t, err)
		require.Len(t, queue, 2)
		require.Equal(t, aliceRedeems[1].Id, queue[0].Id)
		require.Equal(t, aliceRedeems[2].Id, queue[1].Id)

		got, err = svc.Redeems().GetByIndex(ctx, alice, 0)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, aliceRedeems[1].Id, got.Id)

		// Bob's queue is untouched.
		length, err = svc.Redeems().QueueLength(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, uint64(1), length)

		err = svc.Redeems().Remove(ctx, alice, []string{
			aliceRedeems[1].Id, aliceRedeems[2].Id,
		})
		require.NoError(t, err)

		length, err = svc.Redeems().QueueLength(ctx, alice)
		require.NoError(t, err)
		require.Zero(t, length)

		err = svc.Redeems().Remove(ctx, bob, []string{bobRedeem.Id})
		require.NoError(t, err)
	})
}

func testDebtRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_debt_repository", func(t *testing.T) {
		ctx := context.Background()

		debt, err := svc.Debts().Get(ctx, wbtc)
		require.NoError(t, err)
		require.Nil(t, debt)

		err = svc.Debts().AddTotal(ctx, wbtc, 98_000_000)
		require.NoError(t, err)
		err = svc.Debts().AddTotal(ctx, wbtc, 49_000_000)
		require.NoError(t, err)
		err = svc.Debts().AddTotal(ctx, tbtc, 10_000_000)
		require.NoError(t, err)

		err = svc.Debts().AddClaimed(ctx, wbtc, 98_000_000)
		require.NoError(t, err)
		err = svc.Debts().AddPrincipal(ctx, wbtc, 40_000_000)
		require.NoError(t, err)

		debt, err = svc.Debts().Get(ctx, wbtc)
		require.NoError(t, err)
		require.NotNil(t, debt)
		require.Equal(t, uint64(147_000_000), debt.TotalAmount)
		require.Equal(t, uint64(98_000_000), debt.ClaimedAmount)
		require.Equal(t, uint64(40_000_000), debt.PrincipalAmount)
		require.Equal(t, uint64(9_000_000), debt.Outstanding())

		debts, err := svc.Debts().GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, debts, 2)
	})
}

func testPolicyRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_policy_repository", func(t *testing.T) {
		ctx := context.Background()

		// The default policy allows everyone.
		policy, err := svc.Policy().Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, policy)
		require.False(t, policy.WhitelistEnabled)
		require.Empty(t, policy.Whitelist)
		require.Empty(t, policy.Blacklist)
		require.True(t, policy.AllowsRecipient(alice))

		changed, err := svc.Policy().AddToWhitelist(ctx, []string{alice, bob})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{alice, bob}, changed)

		// Re-adding reports only the new entries.
		changed, err = svc.Policy().AddToWhitelist(ctx, []string{bob, carol})
		require.NoError(t, err)
		require.Equal(t, []string{carol}, changed)

		changed, err = svc.Policy().AddToBlacklist(ctx, []string{carol})
		require.NoError(t, err)
		require.Equal(t, []string{carol}, changed)

		err = svc.Policy().SetWhitelistEnabled(ctx, true)
		require.NoError(t, err)

		policy, err = svc.Policy().Get(ctx)
		require.NoError(t, err)
		require.True(t, policy.WhitelistEnabled)
		require.True(t, policy.AllowsRecipient(alice))
		// Blacklist wins over whitelist membership.
		require.False(t, policy.AllowsRecipient(carol))

		changed, err = svc.Policy().RemoveFromWhitelist(ctx, []string{bob, carol})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{bob, carol}, changed)

		changed, err = svc.Policy().RemoveFromWhitelist(ctx, []string{bob})
		require.NoError(t, err)
		require.Empty(t, changed)

		changed, err = svc.Policy().RemoveFromBlacklist(ctx, []string{carol})
		require.NoError(t, err)
		require.Equal(t, []string{carol}, changed)

		err = svc.Policy().SetWhitelistEnabled(ctx, false)
		require.NoError(t, err)

		policy, err = svc.Policy().Get(ctx)
		require.NoError(t, err)
		require.False(t, policy.WhitelistEnabled)
		require.True(t, policy.AllowsRecipient(bob))
		require.True(t, policy.AllowsRecipient(carol))
	})
}

func testSettingsRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_settings_repository", func(t *testing.T) {
		ctx := context.Background()

		settings, err := svc.Settings().Get(ctx)
		require.NoError(t, err)
		require.Nil(t, settings)

		expected := domain.NewSettings(
			domain.DefaultRedeemFeeRate, 3600, 7200, 600, 100_000,
		)
		err = svc.Settings().Upsert(ctx, *expected)
		require.NoError(t, err)

		settings, err = svc.Settings().Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, settings)
		require.Equal(t, expected.RedeemFeeRate, settings.RedeemFeeRate)
		require.Equal(t, expected.RedeemDelay, settings.RedeemDelay)
		require.Equal(t, expected.RedeemPrincipalDelay, settings.RedeemPrincipalDelay)
		require.Equal(t, expected.PrincipalDelayMinGap, settings.PrincipalDelayMinGap)
		require.Equal(t, expected.MinRedeemAmount, settings.MinRedeemAmount)

		settings.RedeemDelay = 1800
		err = svc.Settings().Upsert(ctx, *settings)
		require.NoError(t, err)

		settings, err = svc.Settings().Get(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1800), settings.RedeemDelay)

		err = svc.Settings().Clear(ctx)
		require.NoError(t, err)

		settings, err = svc.Settings().Get(ctx)
		require.NoError(t, err)
		require.Nil(t, settings)
	})
}

func testFeeRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_fee_repository", func(t *testing.T) {
		ctx := context.Background()

		ledger, err := svc.Fees().Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, ledger)
		require.Zero(t, ledger.Balance())

		err = svc.Fees().Add(ctx, 2_000_000)
		require.NoError(t, err)
		err = svc.Fees().Add(ctx, 1_000_000)
		require.NoError(t, err)

		ledger, err = svc.Fees().Get(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(3_000_000), ledger.Accrued)
		require.Equal(t, uint64(3_000_000), ledger.Balance())

		err = svc.Fees().Withdraw(ctx, 2_500_000)
		require.NoError(t, err)

		ledger, err = svc.Fees().Get(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(3_000_000), ledger.Accrued)
		require.Equal(t, uint64(2_500_000), ledger.Withdrawn)
		require.Equal(t, uint64(500_000), ledger.Balance())
	})
}
