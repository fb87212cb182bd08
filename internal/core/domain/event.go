package domain

type EventType string

const (
	EventTypeDelayedRedeemCreated             EventType = "DELAYED_REDEEM_CREATED"
	EventTypeDelayedRedeemsClaimed            EventType = "DELAYED_REDEEMS_CLAIMED"
	EventTypeDelayedRedeemsCompleted          EventType = "DELAYED_REDEEMS_COMPLETED"
	EventTypeDelayedRedeemsPrincipalClaimed   EventType = "DELAYED_REDEEMS_PRINCIPAL_CLAIMED"
	EventTypeDelayedRedeemsPrincipalCompleted EventType = "DELAYED_REDEEMS_PRINCIPAL_COMPLETED"
	EventTypeQuotaRateSet                     EventType = "QUOTA_RATE_SET"
	EventTypeMaxFreeQuotaSet                  EventType = "MAX_FREE_QUOTA_SET"
	EventTypeRedeemFeeRateSet                 EventType = "REDEEM_FEE_RATE_SET"
	EventTypeRedeemDelaySet                   EventType = "REDEEM_DELAY_SET"
	EventTypeRedeemPrincipalDelaySet          EventType = "REDEEM_PRINCIPAL_DELAY_SET"
	EventTypeWrappedAssetListAdded            EventType = "WRAPPED_ASSET_LIST_ADDED"
	EventTypeWrappedAssetListRemoved          EventType = "WRAPPED_ASSET_LIST_REMOVED"
	EventTypeWhitelistAdded                   EventType = "WHITELIST_ADDED"
	EventTypeWhitelistRemoved                 EventType = "WHITELIST_REMOVED"
	EventTypeBlacklistAdded                   EventType = "BLACKLIST_ADDED"
	EventTypeBlacklistRemoved                 EventType = "BLACKLIST_REMOVED"
	EventTypeTokensPaused                     EventType = "TOKENS_PAUSED"
	EventTypeTokensUnpaused                   EventType = "TOKENS_UNPAUSED"
	EventTypeWhitelistEnabledSet              EventType = "WHITELIST_ENABLED_SET"
	EventTypeManagementFeeWithdrawn           EventType = "MANAGEMENT_FEE_WITHDRAWN"
)

type Event interface {
	GetType() EventType
}

// DelayedRedeemCreated is emitted when a new slot is appended to a
// recipient's queue. Amount is net of the retained fee.
type DelayedRedeemCreated struct {
	Type      EventType
	Id        string
	Recipient string
	Token     string
	Amount    uint64
	Fee       uint64
	Index     uint64
	CreatedAt int64
}

type DelayedRedeemsClaimed struct {
	Type      EventType
	Id        string
	Recipient string
	Token     string
	// AmountClaimed is in the token's own decimals, decimal string encoded.
	AmountClaimed string
}

type DelayedRedeemsCompleted struct {
	Type             EventType
	Id               string
	Recipient        string
	AmountBurned     uint64
	RedeemsCompleted uint64
}

type DelayedRedeemsPrincipalClaimed struct {
	Type          EventType
	Id            string
	Recipient     string
	Token         string
	ClaimedAmount uint64
}

type DelayedRedeemsPrincipalCompleted struct {
	Type             EventType
	Id               string
	Recipient        string
	PrincipalAmount  uint64
	RedeemsCompleted uint64
}

type QuotaRateSet struct {
	Type         EventType
	Id           string
	Token        string
	PreviousRate uint64
	NewRate      uint64
}

type MaxFreeQuotaSet struct {
	Type          EventType
	Id            string
	Token         string
	PreviousQuota uint64
	NewQuota      uint64
}

type RedeemFeeRateSet struct {
	Type            EventType
	Id              string
	PreviousFeeRate uint64
	NewFeeRate      uint64
}

type RedeemDelaySet struct {
	Type          EventType
	Id            string
	PreviousDelay int64
	NewDelay      int64
}

type RedeemPrincipalDelaySet struct {
	Type          EventType
	Id            string
	PreviousDelay int64
	NewDelay      int64
}

type WrappedAssetListAdded struct {
	Type   EventType
	Id     string
	Tokens []string
}

type WrappedAssetListRemoved struct {
	Type   EventType
	Id     string
	Tokens []string
}

type WhitelistAdded struct {
	Type     EventType
	Id       string
	Accounts []string
}

type WhitelistRemoved struct {
	Type     EventType
	Id       string
	Accounts []string
}

type BlacklistAdded struct {
	Type     EventType
	Id       string
	Accounts []string
}

type BlacklistRemoved struct {
	Type     EventType
	Id       string
	Accounts []string
}

type TokensPaused struct {
	Type   EventType
	Id     string
	Tokens []string
}

type TokensUnpaused struct {
	Type   EventType
	Id     string
	Tokens []string
}

type WhitelistEnabledSet struct {
	Type     EventType
	Id       string
	Previous bool
	New      bool
}

type ManagementFeeWithdrawn struct {
	Type      EventType
	Id        string
	Recipient string
	Amount    uint64
}

func (e DelayedRedeemCreated) GetType() EventType             { return e.Type }
func (e DelayedRedeemsClaimed) GetType() EventType            { return e.Type }
func (e DelayedRedeemsCompleted) GetType() EventType          { return e.Type }
func (e DelayedRedeemsPrincipalClaimed) GetType() EventType   { return e.Type }
func (e DelayedRedeemsPrincipalCompleted) GetType() EventType { return e.Type }
func (e QuotaRateSet) GetType() EventType                     { return e.Type }
func (e MaxFreeQuotaSet) GetType() EventType                  { return e.Type }
func (e RedeemFeeRateSet) GetType() EventType                 { return e.Type }
func (e RedeemDelaySet) GetType() EventType                   { return e.Type }
func (e RedeemPrincipalDelaySet) GetType() EventType          { return e.Type }
func (e WrappedAssetListAdded) GetType() EventType            { return e.Type }
func (e WrappedAssetListRemoved) GetType() EventType          { return e.Type }
func (e WhitelistAdded) GetType() EventType                   { return e.Type }
func (e WhitelistRemoved) GetType() EventType                 { return e.Type }
func (e BlacklistAdded) GetType() EventType                   { return e.Type }
func (e BlacklistRemoved) GetType() EventType                 { return e.Type }
func (e TokensPaused) GetType() EventType                     { return e.Type }
func (e TokensUnpaused) GetType() EventType                   { return e.Type }
func (e WhitelistEnabledSet) GetType() EventType              { return e.Type }
func (e ManagementFeeWithdrawn) GetType() EventType           { return e.Type }
