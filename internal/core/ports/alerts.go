package ports

import "context"

const (
	RedeemsMatured     Topic = "Redeems Matured"
	LiquidityShortfall Topic = "Liquidity Shortfall"
	LargeRedemption    Topic = "Large Redemption"
)

type Topic string

type Alerts interface {
	Publish(ctx context.Context, topic Topic, message interface{}) error
}

type RedeemsMaturedAlert struct {
	Recipient string
	Token     string
	Amount    uint64
	Index     uint64
}

type LiquidityShortfallAlert struct {
	Token string
	// Owed in wrapped units, Reserve in the token's own decimals.
	Owed    uint64
	Reserve string
}

type LargeRedemptionAlert struct {
	Recipient string
	Token     string
	Amount    uint64
}
