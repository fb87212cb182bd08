package ports

import (
	"context"
	"math/big"
)

// VaultService is the reserve-holding collaborator. Amounts passed to
// PayUnderlying and returned by BalanceOf are in the token's own decimals.
type VaultService interface {
	PayUnderlying(ctx context.Context, token, recipient string, amount *big.Int) error
	BalanceOf(ctx context.Context, token string) (*big.Int, error)
	DecimalsOf(ctx context.Context, token string) (uint8, error)
}

// WrappedTokenService exposes the standard fungible-token surface of the
// wrapped BTC token. Amounts are 8-decimal wrapped units. The router holds
// minting rights, used exclusively by principal reclaims.
type WrappedTokenService interface {
	TransferFrom(ctx context.Context, from, to string, amount uint64) error
	Transfer(ctx context.Context, to string, amount uint64) error
	Mint(ctx context.Context, recipient string, amount uint64) error
	Burn(ctx context.Context, amount uint64) error
	BalanceOf(ctx context.Context, account string) (uint64, error)
	Allowance(ctx context.Context, owner, spender string) (uint64, error)
}
