package model

import "fmt"

// ErrorKind classifies a publishing failure. Terminal kinds require user action
// (connect or reconnect an account); transient kinds are retry-eligible until the
// post's max_retries is exhausted.
type ErrorKind string

const (
	ErrNoAccountConnected    ErrorKind = "no_account_connected"
	ErrTokenExpiredNoRefresh ErrorKind = "token_expired_no_refresh"
	ErrRefreshFailed         ErrorKind = "refresh_failed"
	ErrInsufficientScope     ErrorKind = "insufficient_scope"
	ErrPlatformAPI           ErrorKind = "platform_api_error"
	ErrMediaFetch            ErrorKind = "media_fetch_error"
)

// PublishError is the engine's error taxonomy. The raw provider detail is kept for
// operators; user-facing surfaces use UserMessage instead.
type PublishError struct {
	Kind     ErrorKind
	Platform Platform
	Detail   string
	Cause    error
}

func NewPublishError(kind ErrorKind, platform Platform, detail string) *PublishError {
	return &PublishError{Kind: kind, Platform: platform, Detail: detail}
}

func WrapPublishError(kind ErrorKind, platform Platform, err error) *PublishError {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &PublishError{Kind: kind, Platform: platform, Detail: detail, Cause: err}
}

func (e *PublishError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Platform, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Platform, e.Kind, e.Detail)
}

func (e *PublishError) Unwrap() error { return e.Cause }

// Terminal reports whether the failure requires user intervention rather than a retry.
func (e *PublishError) Terminal() bool {
	switch e.Kind {
	case ErrNoAccountConnected, ErrTokenExpiredNoRefresh, ErrRefreshFailed, ErrInsufficientScope:
		return true
	}
	return false
}

// UserMessage returns the human-readable failure text shown to the post owner.
// Never exposes the raw provider response on its own.
func (e *PublishError) UserMessage() string {
	switch e.Kind {
	case ErrNoAccountConnected:
		return fmt.Sprintf("No %s account is connected. Connect an account to publish.", e.Platform)
	case ErrTokenExpiredNoRefresh, ErrRefreshFailed:
		return fmt.Sprintf("Your %s connection has expired. Reconnect the account to continue publishing.", e.Platform)
	case ErrInsufficientScope:
		return fmt.Sprintf("Your %s account is missing publishing permissions. Reconnect and grant the requested permissions.", e.Platform)
	case ErrMediaFetch:
		return "The post media could not be downloaded. The attempt will be retried."
	default:
		return fmt.Sprintf("Publishing to %s failed temporarily. The attempt will be retried.", e.Platform)
	}
}
