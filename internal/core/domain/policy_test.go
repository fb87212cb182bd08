package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessPolicy(t *testing.T) {
	testCases := []struct {
		whitelistEnabled bool
		whitelisted      bool
		blacklisted      bool
		allowed          bool
		description      string
	}{
		{false, false, false, true, "open access"},
		{false, false, true, false, "blacklist wins with whitelist disabled"},
		{true, false, false, false, "whitelist enabled, account absent"},
		{true, true, false, true, "whitelist enabled, account present"},
		{true, true, true, false, "blacklist wins over whitelist"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			policy := NewAccessPolicy(tc.whitelistEnabled)
			if tc.whitelisted {
				policy.Whitelist["0xuser"] = struct{}{}
			}
			if tc.blacklisted {
				policy.Blacklist["0xuser"] = struct{}{}
			}
			require.Equal(t, tc.allowed, policy.AllowsRecipient("0xuser"))
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	valid := NewSettings(DefaultRedeemFeeRate, 604800, 1209600, 86400, 1000)
	require.NoError(t, valid.Validate())

	feeTooHigh := *valid
	feeTooHigh.RedeemFeeRate = RedeemFeeRateRange + 1
	require.Error(t, feeTooHigh.Validate())

	delayTooLong := *valid
	delayTooLong.RedeemPrincipalDelay = MaxRedeemDelay + 100
	require.Error(t, delayTooLong.Validate())

	gapTooSmall := *valid
	gapTooSmall.RedeemPrincipalDelay = valid.RedeemDelay + valid.PrincipalDelayMinGap - 1
	require.Error(t, gapTooSmall.Validate())
}
