package application

import (
	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
)

const (
	RoleOperator = "operator"
	RoleTreasury = "treasury"
)

// Caller identifies the authenticated account behind a request together with
// the roles granted to it. Capability checks receive it explicitly instead of
// reading ambient state.
type Caller struct {
	Account string
	Roles   []string
}

func (c Caller) Can(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DelayedRedeemInfo is the read-side view of one queue slot, with both
// eligibility gates evaluated at query time.
type DelayedRedeemInfo struct {
	Index              uint64
	Token              string
	Amount             uint64
	CreatedAt          int64
	Claimable          bool
	PrincipalClaimable bool
}

// ClaimedRedeem reports one settled slot. For asset claims AmountPaid is in
// the token's own decimals; for principal reclaims it is the wrapped amount
// minted back.
type ClaimedRedeem struct {
	Index      uint64
	Token      string
	AmountPaid string
}

// ClaimSummary aggregates a whole claim batch. AmountSettled is the sum of
// owed wrapped units settled by the batch.
//
// Asset claims pay out through the vault one slot at a time, and a payout
// cannot be reversed. When a payout fails mid-batch the already-paid prefix
// is settled and removed from the queue, and the summary is returned
// alongside the error: a non-nil summary with a non-nil error means partial
// settlement, Claimed lists exactly the slots that were paid.
type ClaimSummary struct {
	Recipient     string
	Claimed       []ClaimedRedeem
	AmountSettled uint64
}

type TokenInfo struct {
	Address        string
	Decimals       uint8
	Listed         bool
	Paused         bool
	QuotaPerSecond uint64
	MaxFreeQuota   uint64
	QuotaAvailable uint64
}

type TokenDebtInfo struct {
	Token           string
	TotalAmount     uint64
	ClaimedAmount   uint64
	PrincipalAmount uint64
	Outstanding     uint64
}

type PolicyInfo struct {
	WhitelistEnabled bool
	Whitelist        []string
	Blacklist        []string
}

func newTokenDebtInfo(d domain.TokenDebt) TokenDebtInfo {
	return TokenDebtInfo{
		Token:           d.Token,
		TotalAmount:     d.TotalAmount,
		ClaimedAmount:   d.ClaimedAmount,
		PrincipalAmount: d.PrincipalAmount,
		Outstanding:     d.Outstanding(),
	}
}
