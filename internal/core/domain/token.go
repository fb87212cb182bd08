package domain

import "math/big"

// NativeToken is the sentinel address standing in for the chain's native coin.
const NativeToken = "0xbeDFFfFfFFfFfFfFFfFfFFFFfFFfFFffffFFFFFF"

const (
	// RedeemFeeRateRange is the denominator of the redeem fee rate.
	RedeemFeeRateRange = 10000
	// DefaultRedeemFeeRate is 2% expressed over RedeemFeeRateRange.
	DefaultRedeemFeeRate = 200
	// MaxRedeemDelay bounds both redemption delays (30 days).
	MaxRedeemDelay = 2592000
	// ExchangeRateBase converts 8-decimal wrapped units to 18-decimal
	// underlying units.
	ExchangeRateBase = 10_000_000_000

	WrappedTokenDecimals = 8
)

type Token struct {
	Address        string
	Decimals       uint8
	Listed         bool
	Paused         bool
	QuotaPerSecond uint64
	MaxFreeQuota   uint64
}

// Redeemable reports whether delayed redeems may be created or settled
// against this token.
func (t Token) Redeemable() bool {
	return t.Listed && !t.Paused
}

// UnderlyingAmount scales a wrapped-token amount to the token's own decimals.
// 18-decimal amounts do not fit in uint64, hence big.Int.
func (t Token) UnderlyingAmount(amount uint64) *big.Int {
	out := new(big.Int).SetUint64(amount)
	if t.Decimals == WrappedTokenDecimals {
		return out
	}
	return out.Mul(out, big.NewInt(ExchangeRateBase))
}
