package model

import "time"

// RefreshedToken is the normalized response of a platform's OAuth refresh endpoint.
type RefreshedToken struct {
	AccessToken  string
	RefreshToken string     // empty when the provider does not rotate it
	ExpiresAt    *time.Time // nil when the provider returned no expiry
}
