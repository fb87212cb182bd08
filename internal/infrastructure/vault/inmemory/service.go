package inmemoryvault

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
)

// VaultService simulates the reserve-holding vault. Useful for development
// and for exercising the claim engine without a bridge deployment.
type VaultService struct {
	lock     *sync.Mutex
	reserves map[string]*big.Int
	decimals map[string]uint8
	payouts  map[string]map[string]*big.Int // recipient -> token -> paid
}

func NewVaultService() *VaultService {
	return &VaultService{
		lock:     &sync.Mutex{},
		reserves: make(map[string]*big.Int),
		decimals: make(map[string]uint8),
		payouts:  make(map[string]map[string]*big.Int),
	}
}

// Fund credits the vault's reserve for a token and fixes its decimals.
func (v *VaultService) Fund(token string, amount *big.Int, decimals uint8) {
	v.lock.Lock()
	defer v.lock.Unlock()
	reserve, ok := v.reserves[token]
	if !ok {
		reserve = new(big.Int)
		v.reserves[token] = reserve
	}
	reserve.Add(reserve, amount)
	v.decimals[token] = decimals
}

func (v *VaultService) PayUnderlying(
	_ context.Context, token, recipient string, amount *big.Int,
) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	reserve, ok := v.reserves[token]
	if !ok || reserve.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient reserve for token %s", token)
	}
	reserve.Sub(reserve, amount)

	byToken, ok := v.payouts[recipient]
	if !ok {
		byToken = make(map[string]*big.Int)
		v.payouts[recipient] = byToken
	}
	paid, ok := byToken[token]
	if !ok {
		paid = new(big.Int)
		byToken[token] = paid
	}
	paid.Add(paid, amount)
	return nil
}

func (v *VaultService) BalanceOf(_ context.Context, token string) (*big.Int, error) {
	v.lock.Lock()
	defer v.lock.Unlock()
	reserve, ok := v.reserves[token]
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(reserve), nil
}

func (v *VaultService) DecimalsOf(_ context.Context, token string) (uint8, error) {
	v.lock.Lock()
	defer v.lock.Unlock()
	decimals, ok := v.decimals[token]
	if !ok {
		return 0, fmt.Errorf("unknown token %s", token)
	}
	return decimals, nil
}

// PaidTo reports the cumulative amount paid out to a recipient for a token.
func (v *VaultService) PaidTo(recipient, token string) *big.Int {
	v.lock.Lock()
	defer v.lock.Unlock()
	byToken, ok := v.payouts[recipient]
	if !ok {
		return new(big.Int)
	}
	paid, ok := byToken[token]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(paid)
}

var _ ports.VaultService = (*VaultService)(nil)
