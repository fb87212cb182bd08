package domain

import (
	"math/bits"

	"github.com/google/uuid"
)

// DelayedRedeem is one pending redemption slot in a recipient's queue.
// It is created atomically with the fee deduction and mutated only by the
// claim engine, which settles it through exactly one of the two terminal
// paths (asset claim or principal reclaim) and removes it from the queue.
type DelayedRedeem struct {
	Id        string
	Recipient string
	Token     string
	// Amount owed in wrapped-token units, fee already deducted.
	Amount    uint64
	CreatedAt int64
}

func NewDelayedRedeem(recipient, token string, amount uint64, now int64) DelayedRedeem {
	return DelayedRedeem{
		Id:        uuid.New().String(),
		Recipient: recipient,
		Token:     token,
		Amount:    amount,
		CreatedAt: now,
	}
}

// Claimable reports whether the underlying asset may be paid out.
func (d DelayedRedeem) Claimable(redeemDelay, now int64) bool {
	return now-d.CreatedAt >= redeemDelay
}

// PrincipalClaimable reports whether the wrapped principal may be reclaimed
// instead. The window opens strictly later than the asset-claim one and is
// measured from creation time.
func (d DelayedRedeem) PrincipalClaimable(redeemPrincipalDelay, now int64) bool {
	return now-d.CreatedAt >= redeemPrincipalDelay
}

// AmountOwed applies the fee rate to a requested amount. Integer division
// rounds the principal down, so the remainder always lands on the fee side.
func AmountOwed(requested, feeRate uint64) (owed, fee uint64) {
	// 128-bit intermediate, the product can exceed uint64 for large requests.
	hi, lo := bits.Mul64(requested, RedeemFeeRateRange-feeRate)
	owed, _ = bits.Div64(hi, lo, RedeemFeeRateRange)
	fee = requested - owed
	return
}
