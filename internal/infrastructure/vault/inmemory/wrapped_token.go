package inmemoryvault

import (
	"context"
	"fmt"
	"sync"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
)

// WrappedTokenService simulates the wrapped BTC token contract. The service
// acts on behalf of a single holder account, the router, which is the spender
// in TransferFrom and the sender in Transfer and Burn.
type WrappedTokenService struct {
	lock       *sync.Mutex
	self       string
	balances   map[string]uint64
	allowances map[string]map[string]uint64 // owner -> spender -> amount
	supply     uint64
}

func NewWrappedTokenService(selfAccount string) *WrappedTokenService {
	return &WrappedTokenService{
		lock:       &sync.Mutex{},
		self:       selfAccount,
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
	}
}

// Credit seeds an account balance, growing the supply accordingly.
func (w *WrappedTokenService) Credit(account string, amount uint64) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.balances[account] += amount
	w.supply += amount
}

// Approve grants the router spending rights over an owner's balance.
func (w *WrappedTokenService) Approve(owner, spender string, amount uint64) {
	w.lock.Lock()
	defer w.lock.Unlock()
	bySpender, ok := w.allowances[owner]
	if !ok {
		bySpender = make(map[string]uint64)
		w.allowances[owner] = bySpender
	}
	bySpender[spender] = amount
}

func (w *WrappedTokenService) TransferFrom(
	_ context.Context, from, to string, amount uint64,
) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	allowance := w.allowances[from][w.self]
	if allowance < amount {
		return fmt.Errorf("allowance of %s for %s is %d, need %d", from, w.self, allowance, amount)
	}
	if w.balances[from] < amount {
		return fmt.Errorf("balance of %s is %d, need %d", from, w.balances[from], amount)
	}
	w.allowances[from][w.self] -= amount
	w.balances[from] -= amount
	w.balances[to] += amount
	return nil
}

func (w *WrappedTokenService) Transfer(_ context.Context, to string, amount uint64) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.balances[w.self] < amount {
		return fmt.Errorf("balance of %s is %d, need %d", w.self, w.balances[w.self], amount)
	}
	w.balances[w.self] -= amount
	w.balances[to] += amount
	return nil
}

func (w *WrappedTokenService) Mint(_ context.Context, recipient string, amount uint64) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.balances[recipient] += amount
	w.supply += amount
	return nil
}

func (w *WrappedTokenService) Burn(_ context.Context, amount uint64) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.balances[w.self] < amount {
		return fmt.Errorf("balance of %s is %d, cannot burn %d", w.self, w.balances[w.self], amount)
	}
	w.balances[w.self] -= amount
	w.supply -= amount
	return nil
}

func (w *WrappedTokenService) BalanceOf(_ context.Context, account string) (uint64, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.balances[account], nil
}

func (w *WrappedTokenService) Allowance(_ context.Context, owner, spender string) (uint64, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.allowances[owner][spender], nil
}

// TotalSupply reports the simulated circulating supply.
func (w *WrappedTokenService) TotalSupply() uint64 {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.supply
}

var _ ports.WrappedTokenService = (*WrappedTokenService)(nil)
