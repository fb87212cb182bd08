package domain

import (
	"fmt"
	"time"
)

type Settings struct {
	RedeemFeeRate        uint64
	RedeemDelay          int64
	RedeemPrincipalDelay int64
	// PrincipalDelayMinGap is the minimum required distance between the two
	// delays: RedeemPrincipalDelay >= RedeemDelay + PrincipalDelayMinGap.
	PrincipalDelayMinGap int64
	MinRedeemAmount      uint64
	UpdatedAt            time.Time
}

func NewSettings(
	redeemFeeRate uint64, redeemDelay, redeemPrincipalDelay, principalDelayMinGap int64,
	minRedeemAmount uint64,
) *Settings {
	return &Settings{
		RedeemFeeRate:        redeemFeeRate,
		RedeemDelay:          redeemDelay,
		RedeemPrincipalDelay: redeemPrincipalDelay,
		PrincipalDelayMinGap: principalDelayMinGap,
		MinRedeemAmount:      minRedeemAmount,
	}
}

func (s Settings) Validate() error {
	if s.RedeemFeeRate > RedeemFeeRateRange {
		return fmt.Errorf(
			"redeem fee rate %d exceeds range %d", s.RedeemFeeRate, RedeemFeeRateRange,
		)
	}
	if s.RedeemDelay < 0 || s.RedeemDelay > MaxRedeemDelay {
		return fmt.Errorf("redeem delay %d out of bounds", s.RedeemDelay)
	}
	if s.RedeemPrincipalDelay > MaxRedeemDelay {
		return fmt.Errorf("redeem principal delay %d out of bounds", s.RedeemPrincipalDelay)
	}
	if s.RedeemPrincipalDelay < s.RedeemDelay+s.PrincipalDelayMinGap {
		return fmt.Errorf(
			"redeem principal delay %d must be at least redeem delay %d plus %d",
			s.RedeemPrincipalDelay, s.RedeemDelay, s.PrincipalDelayMinGap,
		)
	}
	return nil
}
