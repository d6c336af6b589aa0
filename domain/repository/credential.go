package repository

import (
	"context"

	"social-publisher/domain/model"
)

// ICredential persists platform credentials. Active credentials for a (user,
// platform) pair are returned most-recently-updated first so the orchestrator's
// "first active" selection is deterministic.
type ICredential interface {
	GetActive(ctx context.Context, userID string, platform model.Platform) ([]*model.PlatformCredential, error)
	GetByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error)
	Upsert(ctx context.Context, cred *model.PlatformCredential) error
	// UpdateTokens persists a rotated token set. Must complete before the refreshed
	// credential is handed to any adapter.
	UpdateTokens(ctx context.Context, cred *model.PlatformCredential) error
	Deactivate(ctx context.Context, id int64) error
}
