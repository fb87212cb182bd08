package domain

// TokenDebt tracks per-asset redemption debt. TotalAmount grows at request
// creation, ClaimedAmount only when the underlying asset is paid out.
// Principal reclaims accumulate into PrincipalAmount and never touch
// ClaimedAmount, so TotalAmount >= ClaimedAmount holds in every reachable
// state.
type TokenDebt struct {
	Token           string
	TotalAmount     uint64
	ClaimedAmount   uint64
	PrincipalAmount uint64
}

// Outstanding is the wrapped-unit debt not yet settled by either path.
func (d TokenDebt) Outstanding() uint64 {
	return d.TotalAmount - d.ClaimedAmount - d.PrincipalAmount
}
