package usecase

import (
	"context"
	"time"

	"social-publisher/domain/model"
	"social-publisher/domain/repository"
	"social-publisher/infrastructure/logger"
)

// refreshSkew is how close to expiry a token may get before it is refreshed.
const refreshSkew = 5 * time.Minute

type ICredentialUsecase interface {
	// EnsureValid returns a credential whose access token is safe to hand to an
	// adapter, refreshing and persisting it when needed. A refresh failure
	// deactivates the credential before returning; callers must not retry.
	EnsureValid(ctx context.Context, cred *model.PlatformCredential) (*model.PlatformCredential, *model.PublishError)
	GetByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error)
	Disconnect(ctx context.Context, userID string, platform model.Platform) error
}

type credentialUsecase struct {
	credRepo  repository.ICredential
	refresher repository.ITokenRefresher
	metrics   MetricsRecorder
	now       func() time.Time
}

func NewCredentialUsecase(credRepo repository.ICredential, refresher repository.ITokenRefresher, m MetricsRecorder) ICredentialUsecase {
	if m == nil {
		m = noopMetrics{}
	}
	return &credentialUsecase{credRepo: credRepo, refresher: refresher, metrics: m, now: func() time.Time { return time.Now().UTC() }}
}

func (u *credentialUsecase) EnsureValid(ctx context.Context, cred *model.PlatformCredential) (*model.PlatformCredential, *model.PublishError) {
	// Non-expiring tokens and tokens comfortably inside their lifetime pass through.
	if !cred.ExpiresWithin(u.now(), refreshSkew) {
		return cred, nil
	}

	if cred.RefreshToken == "" {
		return nil, model.NewPublishError(model.ErrTokenExpiredNoRefresh, cred.Platform,
			"token expired and no refresh token stored")
	}

	rotated, err := u.refresher.Refresh(ctx, cred)
	if err != nil {
		// Terminal: deactivate before returning so a concurrent caller does not
		// attempt the same doomed refresh.
		if dErr := u.credRepo.Deactivate(ctx, cred.ID); dErr != nil {
			logger.GetLogger().WithField("error", dErr).Error("Failed to deactivate credential after refresh failure")
		}
		u.metrics.RecordRefreshFailure(string(cred.Platform))
		logger.GetLogger().WithFields(map[string]interface{}{
			"credential_id": cred.ID,
			"platform":      cred.Platform,
			"error":         err,
		}).Warn("Credential refresh failed; credential deactivated")
		return nil, model.WrapPublishError(model.ErrRefreshFailed, cred.Platform, err)
	}

	cred.AccessToken = rotated.AccessToken
	if rotated.RefreshToken != "" {
		cred.RefreshToken = rotated.RefreshToken
	}
	if rotated.ExpiresAt != nil {
		cred.ExpiresAt = rotated.ExpiresAt
	}

	// Persist before handing the credential back so concurrent callers observe
	// the rotated token set.
	if err := u.credRepo.UpdateTokens(ctx, cred); err != nil {
		return nil, model.WrapPublishError(model.ErrRefreshFailed, cred.Platform, err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"credential_id": cred.ID,
		"platform":      cred.Platform,
	}).Info("Credential refreshed")
	return cred, nil
}

func (u *credentialUsecase) GetByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error) {
	return u.credRepo.GetByUser(ctx, userID)
}

func (u *credentialUsecase) Disconnect(ctx context.Context, userID string, platform model.Platform) error {
	creds, err := u.credRepo.GetActive(ctx, userID, platform)
	if err != nil {
		return err
	}
	for _, c := range creds {
		if err := u.credRepo.Deactivate(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}
