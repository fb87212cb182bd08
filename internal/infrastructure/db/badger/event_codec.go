package badgerdb

import (
	"encoding/json"
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
)

func decodeAs[E domain.Event](buf []byte) (domain.Event, error) {
	var event E
	if err := json.Unmarshal(buf, &event); err != nil {
		return nil, err
	}
	return event, nil
}

var eventDecoders = map[domain.EventType]func([]byte) (domain.Event, error){
	domain.EventTypeDelayedRedeemCreated:             decodeAs[domain.DelayedRedeemCreated],
	domain.EventTypeDelayedRedeemsClaimed:            decodeAs[domain.DelayedRedeemsClaimed],
	domain.EventTypeDelayedRedeemsCompleted:          decodeAs[domain.DelayedRedeemsCompleted],
	domain.EventTypeDelayedRedeemsPrincipalClaimed:   decodeAs[domain.DelayedRedeemsPrincipalClaimed],
	domain.EventTypeDelayedRedeemsPrincipalCompleted: decodeAs[domain.DelayedRedeemsPrincipalCompleted],
	domain.EventTypeQuotaRateSet:                     decodeAs[domain.QuotaRateSet],
	domain.EventTypeMaxFreeQuotaSet:                  decodeAs[domain.MaxFreeQuotaSet],
	domain.EventTypeRedeemFeeRateSet:                 decodeAs[domain.RedeemFeeRateSet],
	domain.EventTypeRedeemDelaySet:                   decodeAs[domain.RedeemDelaySet],
	domain.EventTypeRedeemPrincipalDelaySet:          decodeAs[domain.RedeemPrincipalDelaySet],
	domain.EventTypeWrappedAssetListAdded:            decodeAs[domain.WrappedAssetListAdded],
	domain.EventTypeWrappedAssetListRemoved:          decodeAs[domain.WrappedAssetListRemoved],
	domain.EventTypeWhitelistAdded:                   decodeAs[domain.WhitelistAdded],
	domain.EventTypeWhitelistRemoved:                 decodeAs[domain.WhitelistRemoved],
	domain.EventTypeBlacklistAdded:                   decodeAs[domain.BlacklistAdded],
	domain.EventTypeBlacklistRemoved:                 decodeAs[domain.BlacklistRemoved],
	domain.EventTypeTokensPaused:                     decodeAs[domain.TokensPaused],
	domain.EventTypeTokensUnpaused:                   decodeAs[domain.TokensUnpaused],
	domain.EventTypeWhitelistEnabledSet:              decodeAs[domain.WhitelistEnabledSet],
	domain.EventTypeManagementFeeWithdrawn:           decodeAs[domain.ManagementFeeWithdrawn],
}

func decodeEvent(buf []byte) (domain.Event, error) {
	var header struct {
		Type domain.EventType
	}
	if err := json.Unmarshal(buf, &header); err != nil {
		return nil, err
	}
	decode, ok := eventDecoders[header.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", header.Type)
	}
	return decode(buf)
}
