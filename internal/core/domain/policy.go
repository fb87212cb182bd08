package domain

// AccessPolicy gates every mutating operation. A recipient passes when the
// whitelist is disabled or contains it, and the blacklist does not.
type AccessPolicy struct {
	WhitelistEnabled bool
	Whitelist        map[string]struct{}
	Blacklist        map[string]struct{}
}

func NewAccessPolicy(whitelistEnabled bool) *AccessPolicy {
	return &AccessPolicy{
		WhitelistEnabled: whitelistEnabled,
		Whitelist:        make(map[string]struct{}),
		Blacklist:        make(map[string]struct{}),
	}
}

func (p AccessPolicy) AllowsRecipient(account string) bool {
	if _, banned := p.Blacklist[account]; banned {
		return false
	}
	if !p.WhitelistEnabled {
		return true
	}
	_, ok := p.Whitelist[account]
	return ok
}

func (p AccessPolicy) Whitelisted(account string) bool {
	_, ok := p.Whitelist[account]
	return ok
}

func (p AccessPolicy) Blacklisted(account string) bool {
	_, ok := p.Blacklist[account]
	return ok
}
