package repository

import (
	"context"

	"social-publisher/domain/model"
)

// IPlatformPublisher is the uniform publishing contract. Implementations translate
// the generic content into the platform's native HTTP sequence and never let
// platform-specific errors escape: every failure is folded into the result.
// Adapters assume the credential was already validated; they never refresh tokens.
type IPlatformPublisher interface {
	Platform() model.Platform
	Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult
}

// ITokenRefresher calls a platform's OAuth refresh endpoint and returns the rotated
// token set. Persistence and deactivation stay with the caller.
type ITokenRefresher interface {
	Refresh(ctx context.Context, cred *model.PlatformCredential) (*model.RefreshedToken, error)
}
