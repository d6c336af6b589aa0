package usecase

import (
	"context"
	"fmt"
	"time"

	"social-publisher/domain/model"
	"social-publisher/domain/repository"
	"social-publisher/infrastructure/logger"
)

type IPublishUsecase interface {
	// PublishPost runs one publish attempt for a scheduled post: credential
	// selection, validity check, scope check, adapter dispatch, and persistence
	// of success or terminal failure. Transient failures are reported back for
	// the dispatch loop's retry bookkeeping.
	PublishPost(ctx context.Context, post *model.ScheduledPost) *model.PublishResult
}

type publishUsecase struct {
	credRepo    repository.ICredential
	postRepo    repository.IScheduledPost
	credentials ICredentialUsecase
	publishers  map[model.Platform]repository.IPlatformPublisher
	metrics     MetricsRecorder
}

func NewPublishUsecase(
	credRepo repository.ICredential,
	postRepo repository.IScheduledPost,
	credentials ICredentialUsecase,
	publishers []repository.IPlatformPublisher,
	m MetricsRecorder,
) IPublishUsecase {
	if m == nil {
		m = noopMetrics{}
	}
	registry := make(map[model.Platform]repository.IPlatformPublisher, len(publishers))
	for _, p := range publishers {
		registry[p.Platform()] = p
	}
	return &publishUsecase{
		credRepo:    credRepo,
		postRepo:    postRepo,
		credentials: credentials,
		publishers:  registry,
		metrics:     m,
	}
}

func (u *publishUsecase) PublishPost(ctx context.Context, post *model.ScheduledPost) *model.PublishResult {
	lg := logger.GetLogger().WithFields(map[string]interface{}{
		"post_id":  post.ID,
		"platform": post.Platform,
		"user_id":  post.UserID,
	})

	result := u.attempt(ctx, post)

	switch {
	case result.Success:
		applied, err := u.postRepo.MarkPublished(ctx, post.ID, result.PostID, result.URL, result.Metadata)
		if err != nil {
			lg.WithField("error", err).Error("Failed to persist published state")
		} else if !applied {
			// Another dispatch pass already owns this post; the external publish
			// happened, which is the at-least-once tradeoff made explicit here.
			lg.Warn("Publish succeeded but post was no longer in scheduled state")
		}
		u.metrics.RecordPublishSuccess(string(post.Platform))
		lg.WithField("external_id", result.PostID).Info("Post published")

	case result.Err != nil && result.Err.Terminal():
		applied, err := u.postRepo.MarkCancelled(ctx, post.ID, result.Err.UserMessage())
		if err != nil {
			lg.WithField("error", err).Error("Failed to persist cancelled state")
		} else if applied {
			u.metrics.RecordCancelled()
		}
		u.metrics.RecordPublishFailure(string(post.Platform), string(result.Err.Kind))
		lg.WithField("kind", result.Err.Kind).Warn("Post cancelled on terminal failure")

	default:
		// Transient: the dispatch loop decides between retry and exhaustion.
		u.metrics.RecordPublishFailure(string(post.Platform), string(result.Err.Kind))
		lg.WithField("kind", result.Err.Kind).Warn("Publish attempt failed transiently")
	}

	return result
}

// attempt runs the publish sequence without touching post state.
func (u *publishUsecase) attempt(ctx context.Context, post *model.ScheduledPost) *model.PublishResult {
	creds, err := u.credRepo.GetActive(ctx, post.UserID, post.Platform)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, post.Platform,
			fmt.Errorf("loading credentials: %w", err)))
	}
	if len(creds) == 0 {
		return model.PublishFail(model.NewPublishError(model.ErrNoAccountConnected, post.Platform,
			"no active credential"))
	}

	// First active credential wins; multiple accounts per platform are not load
	// balanced.
	cred := creds[0]

	cred, authErr := u.credentials.EnsureValid(ctx, cred)
	if authErr != nil {
		return model.PublishFail(authErr)
	}

	if required := post.Platform.RequiredScopes(); !cred.HasScopes(required) {
		return model.PublishFail(model.NewPublishError(model.ErrInsufficientScope, post.Platform,
			fmt.Sprintf("granted scopes %v do not cover %v", cred.Scopes, required)))
	}

	publisher, ok := u.publishers[post.Platform]
	if !ok {
		return model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, post.Platform,
			"no publisher registered for platform"))
	}

	start := time.Now()
	result := publisher.Publish(ctx, &model.PublishContent{Post: post, Credential: cred})
	u.metrics.RecordPublishLatency(time.Since(start))
	if result == nil {
		result = model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, post.Platform,
			"publisher returned no result"))
	}
	return result
}
