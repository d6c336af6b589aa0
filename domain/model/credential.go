package model

import "time"

// PlatformCredential stores the OAuth token set for one connected account on one
// platform. Multiple credentials may exist per (user, platform); only active ones
// are eligible for publishing.
type PlatformCredential struct {
	ID           int64             `json:"id"`
	UserID       string            `json:"user_id"`
	Platform     Platform          `json:"platform"`
	AccountID    string            `json:"account_id"`
	AccountName  string            `json:"account_name"`
	AccessToken  string            `json:"-"`
	RefreshToken string            `json:"-"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"` // nil means the token does not expire
	Scopes       []string          `json:"scopes"`
	Metadata     map[string]string `json:"metadata,omitempty"` // platform opaque data, e.g. facebook page_id
	Active       bool              `json:"active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// HasScopes reports whether the credential's granted scopes cover every required one.
func (c *PlatformCredential) HasScopes(required []string) bool {
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// ExpiresWithin reports whether the token expires within d from now. Credentials
// without an expiry never do.
func (c *PlatformCredential) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(now.Add(d))
}
