package application

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db"
	inmemorylivestore "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/live-store/inmemory"
	inmemoryvault "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/vault/inmemory"
	"github.com/Bedrock-Technology/uniBTC/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	routerAccount = "0x0000000000000000000000000000000000000fee"
	token18       = "0x00000000000000000000000000000000000000aa"
	token8        = "0x00000000000000000000000000000000000000bb"
	alice         = "0x000000000000000000000000000000000000a11c"
	bob           = "0x0000000000000000000000000000000000000b0b"

	oneBTC = uint64(100_000_000)

	redeemDelay          = int64(3600)
	redeemPrincipalDelay = int64(7200)

	waitTimeout  = 2 * time.Second
	pollInterval = 20 * time.Millisecond
)

type testClock struct {
	mtx sync.Mutex
	now int64
}

func (c *testClock) Now() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

func (c *testClock) Advance(seconds int64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now += seconds
}

type alertRecorder struct {
	mtx       sync.Mutex
	published []ports.Topic
	messages  []interface{}
}

func (a *alertRecorder) Publish(_ context.Context, topic ports.Topic, message interface{}) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.published = append(a.published, topic)
	a.messages = append(a.messages, message)
	return nil
}

func (a *alertRecorder) count(topic ports.Topic) int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	n := 0
	for _, t := range a.published {
		if t == topic {
			n++
		}
	}
	return n
}

type testEnv struct {
	svc     *service
	admin   *adminService
	repo    ports.RepoManager
	vault   *inmemoryvault.VaultService
	wrapped *inmemoryvault.WrappedTokenService
	alerts  *alertRecorder
	clock   *testClock

	operator Caller
	treasury Caller
	user     Caller
}

func newTestEnv(t *testing.T) *testEnv {
	repo, err := db.NewService(db.ServiceConfig{
		EventStoreType:   "badger",
		DataStoreType:    "badger",
		EventStoreConfig: []interface{}{"", nil},
		DataStoreConfig:  []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	clock := &testClock{now: 1_700_000_000}
	vault := inmemoryvault.NewVaultService()
	wrapped := inmemoryvault.NewWrappedTokenService(routerAccount)
	liveStore := inmemorylivestore.NewLiveStore()
	alerts := &alertRecorder{}

	settings := domain.NewSettings(
		domain.DefaultRedeemFeeRate, redeemDelay, redeemPrincipalDelay, 0, 0,
	)
	svc, err := NewService(
		repo, vault, wrapped, liveStore, alerts, routerAccount, settings, 100*oneBTC,
	)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = clock.Now

	admin := NewAdminService(repo, vault, wrapped, liveStore).(*adminService)
	admin.now = clock.Now

	return &testEnv{
		svc:      impl,
		admin:    admin,
		repo:     repo,
		vault:    vault,
		wrapped:  wrapped,
		alerts:   alerts,
		clock:    clock,
		operator: Caller{Account: "0xoperator", Roles: []string{RoleOperator}},
		treasury: Caller{Account: "0xtreasury", Roles: []string{RoleTreasury}},
		user:     Caller{Account: alice},
	}
}

// listToken registers and lists a token with enough quota rate to let tests
// bank what they need by advancing the clock.
func (e *testEnv) listToken(
	t *testing.T, address string, decimals uint8, rate, maxFreeQuota uint64,
) {
	ctx := context.Background()
	e.vault.Fund(address, new(big.Int), decimals)
	require.NoError(t, e.admin.RegisterToken(ctx, e.operator, address, rate, maxFreeQuota))
	require.NoError(t, e.admin.AddWrappedAssets(ctx, e.operator, []string{address}))
}

// fundUser credits wrapped units and approves the router to pull them.
func (e *testEnv) fundUser(account string, amount uint64) {
	e.wrapped.Credit(account, amount)
	e.wrapped.Approve(account, routerAccount, amount)
}

func requireErrorCode(t *testing.T, err error, code uint16) {
	t.Helper()
	require.Error(t, err)
	typed, ok := err.(errors.Error)
	require.True(t, ok, "unexpected error type: %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error: %v", err)
}

func TestCreateDelayedRedeem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 100*oneBTC)
	env.fundUser(alice, 10*oneBTC)
	env.clock.Advance(60) // bank 60 BTC of quota

	index, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, 10*oneBTC)
	require.NoError(t, err)
	require.Equal(t, uint64(0), index)

	// 2% fee: 9.8 owed, 0.2 retained
	owed := uint64(9_80_000_000)
	fee := uint64(20_000_000)

	queue, err := env.svc.GetUserDelayedRedeems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, owed, queue[0].Amount)
	require.Equal(t, token18, queue[0].Token)
	require.False(t, queue[0].Claimable)

	debt, err := env.svc.GetTokenDebt(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, owed, debt.TotalAmount)
	require.Equal(t, uint64(0), debt.ClaimedAmount)
	require.Equal(t, owed, debt.Outstanding)

	feeBalance, err := env.svc.ManagementFeeBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, fee, feeBalance)

	// the full amount left the user, the owed part was burned, the fee stays
	// on the router account
	userBalance, err := env.wrapped.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, userBalance)
	routerBalance, err := env.wrapped.BalanceOf(ctx, routerAccount)
	require.NoError(t, err)
	require.Equal(t, fee, routerBalance)
	require.Equal(t, fee, env.wrapped.TotalSupply())

	// quota shrank by the requested amount
	available, err := env.svc.QuotaAvailable(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, 50*oneBTC, available)

	// requests queue up in creation order
	env.fundUser(alice, oneBTC)
	index, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
	require.NoError(t, err)
	require.Equal(t, uint64(1), index)

	length, err := env.svc.UserRedeemsLength(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(2), length)
}

func TestCreateDelayedRedeemValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 100*oneBTC)
	env.clock.Advance(600)

	t.Run("zero amount", func(t *testing.T) {
		_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, 0)
		requireErrorCode(t, err, errors.INVALID_INPUT.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.svc.CreateDelayedRedeem(ctx, env.user, "0xnothere", oneBTC)
		requireErrorCode(t, err, errors.TOKEN_NOT_ALLOWED.Code)
	})

	t.Run("paused token", func(t *testing.T) {
		require.NoError(t, env.admin.PauseTokens(ctx, env.operator, []string{token18}))
		_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
		requireErrorCode(t, err, errors.TOKEN_NOT_ALLOWED.Code)
		require.NoError(t, env.admin.UnpauseTokens(ctx, env.operator, []string{token18}))
	})

	t.Run("missing funds or allowance", func(t *testing.T) {
		_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
		requireErrorCode(t, err, errors.INSUFFICIENT_FUNDS.Code)

		// balance without approval is still not spendable
		env.wrapped.Credit(alice, oneBTC)
		_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
		requireErrorCode(t, err, errors.INSUFFICIENT_FUNDS.Code)
	})
}

func TestQuotaAccrual(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 10*oneBTC)

	// a fresh token starts with an empty bucket
	available, err := env.svc.QuotaAvailable(ctx, token18)
	require.NoError(t, err)
	require.Zero(t, available)

	// accrual saturates at the cap no matter how long the bucket sits idle
	env.clock.Advance(3600)
	available, err = env.svc.QuotaAvailable(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, 10*oneBTC, available)

	env.fundUser(alice, 6*oneBTC)
	_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, 6*oneBTC)
	require.NoError(t, err)

	available, err = env.svc.QuotaAvailable(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, 4*oneBTC, available)

	// a failed consumption leaves the banked quota untouched
	env.fundUser(bob, 5*oneBTC)
	_, err = env.svc.CreateDelayedRedeem(ctx, Caller{Account: bob}, token18, 5*oneBTC)
	requireErrorCode(t, err, errors.INSUFFICIENT_QUOTA.Code)

	available, err = env.svc.QuotaAvailable(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, 4*oneBTC, available)

	// a smaller request still fits, first come first served
	_, err = env.svc.CreateDelayedRedeem(ctx, Caller{Account: bob}, token18, 4*oneBTC)
	require.NoError(t, err)
}

func TestQuotaRetuneIsNotRetroactive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 1000*oneBTC)

	// 100s at 1 BTC/s banked under the old rate
	env.clock.Advance(100)
	require.NoError(t, env.admin.SetQuotaPerSecond(ctx, env.operator, token18, 2*oneBTC))

	available, err := env.svc.QuotaAvailable(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, 100*oneBTC, available)

	// from the retune on, accrual runs at the new rate
	env.clock.Advance(50)
	available, err = env.svc.QuotaAvailable(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, 200*oneBTC, available)
}

func TestClaimDelayedRedeems(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 10*oneBTC)

	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, 10*oneBTC)
	require.NoError(t, err)
	owed := uint64(9_80_000_000)

	// nothing matured yet: a batch claim is a silent no-op
	summary, err := env.svc.ClaimDelayedRedeems(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, summary.Claimed)
	require.Zero(t, summary.AmountSettled)

	// a targeted claim on an immature slot fails instead
	_, err = env.svc.ClaimDelayedRedeemByIndex(ctx, alice, 0)
	requireErrorCode(t, err, errors.NOT_YET_ELIGIBLE.Code)
	_, err = env.svc.ClaimDelayedRedeemByIndex(ctx, alice, 7)
	requireErrorCode(t, err, errors.REDEEM_NOT_FOUND.Code)

	env.clock.Advance(redeemDelay)
	claimable, err := env.svc.CanClaimDelayedRedeem(ctx, alice, 0)
	require.NoError(t, err)
	require.True(t, claimable)

	// matured but the vault holds nothing
	_, err = env.svc.ClaimDelayedRedeems(ctx, alice)
	requireErrorCode(t, err, errors.INSUFFICIENT_FUNDS.Code)

	// 18-decimal payout scales the 8-decimal owed amount
	owedUnderlying := new(big.Int).Mul(
		new(big.Int).SetUint64(owed), big.NewInt(domain.ExchangeRateBase),
	)
	env.vault.Fund(token18, owedUnderlying, 18)

	summary, err = env.svc.ClaimDelayedRedeems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, summary.Claimed, 1)
	require.Equal(t, owed, summary.AmountSettled)
	require.Equal(t, owedUnderlying.String(), summary.Claimed[0].AmountPaid)
	require.Equal(t, owedUnderlying, env.vault.PaidTo(alice, token18))

	// the slot is gone and the debt is settled
	length, err := env.svc.UserRedeemsLength(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, length)
	debt, err := env.svc.GetTokenDebt(ctx, token18)
	require.NoError(t, err)
	require.Equal(t, owed, debt.ClaimedAmount)
	require.Zero(t, debt.Outstanding)
}

func TestClaimDelayedRedeemByIndexCompactsQueue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token8, 8, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 3*oneBTC)

	for i := 0; i < 3; i++ {
		_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token8, oneBTC)
		require.NoError(t, err)
	}
	env.clock.Advance(redeemDelay)
	env.vault.Fund(token8, new(big.Int).SetUint64(3*oneBTC), 8)

	owed, _ := domain.AmountOwed(oneBTC, domain.DefaultRedeemFeeRate)
	summary, err := env.svc.ClaimDelayedRedeemByIndex(ctx, alice, 1)
	require.NoError(t, err)
	require.Len(t, summary.Claimed, 1)
	require.Equal(t, owed, summary.AmountSettled)

	// survivors keep their relative order under the shifted indices
	queue, err := env.svc.GetUserDelayedRedeems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, uint64(0), queue[0].Index)
	require.Equal(t, uint64(1), queue[1].Index)
}

func TestClaimPrincipals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 4*oneBTC)

	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, 2*oneBTC)
	require.NoError(t, err)
	_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, 2*oneBTC)
	require.NoError(t, err)
	owedEach, _ := domain.AmountOwed(2*oneBTC, domain.DefaultRedeemFeeRate)

	// the principal window opens strictly after the asset one
	env.clock.Advance(redeemDelay)
	summary, err := env.svc.ClaimPrincipals(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, summary.Claimed)

	env.clock.Advance(redeemPrincipalDelay - redeemDelay)
	summary, err = env.svc.ClaimPrincipals(ctx, alice)
	require.NoError(t, err)
	require.Len(t, summary.Claimed, 2)
	require.Equal(t, 2*owedEach, summary.AmountSettled)

	// the wrapped principal is minted back, no underlying moved
	balance, err := env.wrapped.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, 2*owedEach, balance)
	require.Equal(t, "0", env.vault.PaidTo(alice, token18).String())

	// principal reclaims never count as claimed debt
	debt, err := env.svc.GetTokenDebt(ctx, token18)
	require.NoError(t, err)
	require.Zero(t, debt.ClaimedAmount)
	require.Equal(t, 2*owedEach, debt.PrincipalAmount)
	require.Zero(t, debt.Outstanding)

	length, err := env.svc.UserRedeemsLength(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, length)
}

func TestPausedTokenBlocksClaims(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token8, 8, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 2*oneBTC)

	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token8, 2*oneBTC)
	require.NoError(t, err)
	owed, _ := domain.AmountOwed(2*oneBTC, domain.DefaultRedeemFeeRate)

	env.clock.Advance(redeemPrincipalDelay)
	env.vault.Fund(token8, new(big.Int).SetUint64(2*oneBTC), 8)
	require.NoError(t, env.admin.PauseTokens(ctx, env.operator, []string{token8}))

	// a paused token fails the whole batch, on both claim paths
	_, err = env.svc.ClaimDelayedRedeems(ctx, alice)
	requireErrorCode(t, err, errors.TOKEN_NOT_ALLOWED.Code)
	_, err = env.svc.ClaimPrincipals(ctx, alice)
	requireErrorCode(t, err, errors.TOKEN_NOT_ALLOWED.Code)

	// nothing was settled meanwhile
	length, err := env.svc.UserRedeemsLength(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), length)

	require.NoError(t, env.admin.UnpauseTokens(ctx, env.operator, []string{token8}))
	summary, err := env.svc.ClaimDelayedRedeems(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, owed, summary.AmountSettled)
}

func TestAccessPolicy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 2*oneBTC)

	require.NoError(t, env.admin.AddToBlacklist(ctx, env.operator, []string{alice}))
	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
	requireErrorCode(t, err, errors.POLICY_VIOLATION.Code)
	_, err = env.svc.ClaimDelayedRedeems(ctx, alice)
	requireErrorCode(t, err, errors.POLICY_VIOLATION.Code)

	require.NoError(t, env.admin.RemoveFromBlacklist(ctx, env.operator, []string{alice}))
	_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
	require.NoError(t, err)

	// with the whitelist on, membership becomes mandatory
	require.NoError(t, env.admin.SetWhitelistEnabled(ctx, env.operator, true))
	_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
	requireErrorCode(t, err, errors.POLICY_VIOLATION.Code)

	require.NoError(t, env.admin.AddToWhitelist(ctx, env.operator, []string{alice}))
	_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
	require.NoError(t, err)

	// the blacklist wins over whitelist membership
	require.NoError(t, env.admin.AddToBlacklist(ctx, env.operator, []string{alice}))
	_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, oneBTC)
	requireErrorCode(t, err, errors.POLICY_VIOLATION.Code)
}

func TestAdminAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	nobody := Caller{Account: bob}
	require.Error(t, env.admin.RegisterToken(ctx, nobody, token18, 0, 0))
	requireErrorCode(
		t, env.admin.PauseTokens(ctx, nobody, []string{token18}),
		errors.UNAUTHORIZED.Code,
	)
	requireErrorCode(
		t, env.admin.SetRedeemFeeRate(ctx, nobody, 100), errors.UNAUTHORIZED.Code,
	)

	// fee withdrawal takes the treasury role, operator is not enough
	requireErrorCode(
		t, env.admin.WithdrawManagementFee(ctx, env.operator, bob, 1),
		errors.UNAUTHORIZED.Code,
	)
}

func TestSetRedeemDelays(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.admin.SetRedeemDelay(ctx, env.operator, 600))
	settings, err := env.svc.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(600), settings.RedeemDelay)

	// out of bounds or crossing the principal delay is rejected
	requireErrorCode(
		t, env.admin.SetRedeemDelay(ctx, env.operator, domain.MaxRedeemDelay+1),
		errors.INVALID_DELAY.Code,
	)
	requireErrorCode(
		t, env.admin.SetRedeemDelay(ctx, env.operator, redeemPrincipalDelay+1),
		errors.INVALID_DELAY.Code,
	)
	requireErrorCode(
		t, env.admin.SetRedeemPrincipalDelay(ctx, env.operator, 599),
		errors.INVALID_DELAY.Code,
	)

	require.NoError(t, env.admin.SetRedeemPrincipalDelay(ctx, env.operator, 1200))
	settings, err = env.svc.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1200), settings.RedeemPrincipalDelay)

	requireErrorCode(
		t, env.admin.SetRedeemFeeRate(ctx, env.operator, domain.RedeemFeeRateRange+1),
		errors.INVALID_INPUT.Code,
	)
	require.NoError(t, env.admin.SetRedeemFeeRate(ctx, env.operator, 50))
}

func TestWithdrawManagementFee(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, oneBTC, 100*oneBTC)
	env.clock.Advance(60)
	env.fundUser(alice, 10*oneBTC)

	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, 10*oneBTC)
	require.NoError(t, err)
	fee := uint64(20_000_000)

	requireErrorCode(
		t, env.admin.WithdrawManagementFee(ctx, env.treasury, bob, fee+1),
		errors.INSUFFICIENT_FUNDS.Code,
	)

	require.NoError(t, env.admin.WithdrawManagementFee(ctx, env.treasury, bob, fee/2))
	balance, err := env.svc.ManagementFeeBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, fee/2, balance)

	bobBalance, err := env.wrapped.BalanceOf(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, fee/2, bobBalance)
}

func TestLargeRedemptionAlert(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listToken(t, token18, 18, 10*oneBTC, 1000*oneBTC)
	env.clock.Advance(100)
	env.fundUser(alice, 200*oneBTC)

	// threshold is 100 BTC, the first request stays below it
	_, err := env.svc.CreateDelayedRedeem(ctx, env.user, token18, 50*oneBTC)
	require.NoError(t, err)
	_, err = env.svc.CreateDelayedRedeem(ctx, env.user, token18, 150*oneBTC)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return env.alerts.count(ports.LargeRedemption) == 1
	}, waitTimeout, pollInterval)
}

// faultyVault lets a fixed number of payouts through and rejects the rest,
// as a vault sidecar dropping mid-batch would.
type faultyVault struct {
	*inmemoryvault.VaultService
	allowed int
	calls   int
}

func (v *faultyVault) PayUnderlying(
	ctx context.Context, token, recipient string, amount *big.Int,
) error {
	v.calls++
	if v.calls > v.allowed {
		return fmt.Errorf("payout rejected")
	}
	return v.VaultService.PayUnderlying(ctx, token, recipient, amount)
}

func TestClaimDelayedRedeemsPartialSettlement(t *testing.T) {
	ctx := context.Background()
	repo, err := db.NewService(db.ServiceConfig{
		EventStoreType:   "badger",
		DataStoreType:    "badger",
		EventStoreConfig: []interface{}{"", nil},
		DataStoreConfig:  []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	clock := &testClock{now: 1_700_000_000}
	vault := &faultyVault{VaultService: inmemoryvault.NewVaultService(), allowed: 1}
	wrapped := inmemoryvault.NewWrappedTokenService(routerAccount)
	liveStore := inmemorylivestore.NewLiveStore()

	settings := domain.NewSettings(
		domain.DefaultRedeemFeeRate, redeemDelay, redeemPrincipalDelay, 0, 0,
	)
	svc, err := NewService(
		repo, vault, wrapped, liveStore, nil, routerAccount, settings, 0,
	)
	require.NoError(t, err)
	svc.(*service).now = clock.Now
	admin := NewAdminService(repo, vault, wrapped, liveStore).(*adminService)
	admin.now = clock.Now

	operator := Caller{Account: "0xoperator", Roles: []string{RoleOperator}}
	vault.Fund(token8, new(big.Int).SetUint64(10*oneBTC), 8)
	require.NoError(t, admin.RegisterToken(ctx, operator, token8, oneBTC, 100*oneBTC))
	require.NoError(t, admin.AddWrappedAssets(ctx, operator, []string{token8}))
	clock.Advance(60)
	wrapped.Credit(alice, 2*oneBTC)
	wrapped.Approve(alice, routerAccount, 2*oneBTC)

	owed, _ := domain.AmountOwed(oneBTC, domain.DefaultRedeemFeeRate)
	caller := Caller{Account: alice}
	_, err = svc.CreateDelayedRedeem(ctx, caller, token8, oneBTC)
	require.NoError(t, err)
	_, err = svc.CreateDelayedRedeem(ctx, caller, token8, oneBTC)
	require.NoError(t, err)
	clock.Advance(redeemDelay)

	// the second payout is rejected: the paid prefix settles, the error
	// surfaces, and the summary lists exactly the paid slot
	summary, err := svc.ClaimDelayedRedeems(ctx, alice)
	requireErrorCode(t, err, errors.INTERNAL_ERROR.Code)
	require.NotNil(t, summary)
	require.Len(t, summary.Claimed, 1)
	require.Equal(t, owed, summary.AmountSettled)

	queue, err := svc.GetUserDelayedRedeems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	debt, err := svc.GetTokenDebt(ctx, token8)
	require.NoError(t, err)
	require.Equal(t, owed, debt.ClaimedAmount)
	require.Equal(t, owed, debt.Outstanding)
}
