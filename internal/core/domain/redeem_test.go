package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountOwed(t *testing.T) {
	testCases := []struct {
		requested    uint64
		feeRate      uint64
		expectedOwed uint64
		expectedFee  uint64
		description  string
	}{
		{
			requested:    10 * 1e8,
			feeRate:      DefaultRedeemFeeRate,
			expectedOwed: 9_80000000,
			expectedFee:  20000000,
			description:  "2% fee on 10 wrapped units",
		},
		{
			requested:    10 * 1e8,
			feeRate:      100,
			expectedOwed: 9_90000000,
			expectedFee:  10000000,
			description:  "1% fee",
		},
		{
			requested:    1e8,
			feeRate:      0,
			expectedOwed: 1e8,
			expectedFee:  0,
			description:  "zero fee keeps full principal",
		},
		{
			requested:    3,
			feeRate:      3333,
			expectedOwed: 2,
			expectedFee:  1,
			description:  "principal rounds down, remainder goes to the fee",
		},
		{
			requested:    10 * 1e8,
			feeRate:      RedeemFeeRateRange,
			expectedOwed: 0,
			expectedFee:  10 * 1e8,
			description:  "100% fee",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			owed, fee := AmountOwed(tc.requested, tc.feeRate)
			require.Equal(t, tc.expectedOwed, owed)
			require.Equal(t, tc.expectedFee, fee)
			require.Equal(t, tc.requested, owed+fee)
		})
	}
}

func TestRedeemTimeGates(t *testing.T) {
	const (
		redeemDelay    = 604800  // 7 days
		principalDelay = 1209600 // 14 days
	)

	redeem := NewDelayedRedeem("0xuser", "0xwbtc", 9_80000000, 1000)
	require.NotEmpty(t, redeem.Id)

	require.False(t, redeem.Claimable(redeemDelay, 1000))
	require.False(t, redeem.Claimable(redeemDelay, 1000+redeemDelay-1))
	require.True(t, redeem.Claimable(redeemDelay, 1000+redeemDelay))

	require.False(t, redeem.PrincipalClaimable(principalDelay, 1000+redeemDelay))
	require.False(t, redeem.PrincipalClaimable(principalDelay, 1000+principalDelay-1))
	require.True(t, redeem.PrincipalClaimable(principalDelay, 1000+principalDelay))
}

func TestUnderlyingAmount(t *testing.T) {
	wbtc := Token{Address: "0xwbtc", Decimals: 18}
	fbtc := Token{Address: "0xfbtc", Decimals: 8}

	require.Equal(t, "9800000000000000000", wbtc.UnderlyingAmount(9_80000000).String())
	require.Equal(t, "980000000", fbtc.UnderlyingAmount(9_80000000).String())
}
