package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-publisher/domain/model"
	"social-publisher/domain/repository"
	"social-publisher/usecase"
)

func twitterPost() *model.ScheduledPost {
	return &model.ScheduledPost{
		ID:          100,
		UserID:      "user-1",
		Title:       "hello",
		ContentType: model.ContentTypeText,
		Platform:    model.PlatformTwitter,
		Status:      model.PostStatusScheduled,
		MaxRetries:  3,
	}
}

func twitterCredential() *model.PlatformCredential {
	return &model.PlatformCredential{
		ID:          1,
		UserID:      "user-1",
		Platform:    model.PlatformTwitter,
		AccessToken: "token",
		Scopes:      []string{"tweet.write"},
		Active:      true,
	}
}

func TestPublishUsecase_NoAccountConnected(t *testing.T) {
	credRepo := new(MockCredentialRepository)
	postRepo := new(MockScheduledPostRepository)
	credUsecase := new(MockCredentialUsecase)

	post := twitterPost()
	credRepo.On("GetActive", mock.Anything, "user-1", model.PlatformTwitter).
		Return([]*model.PlatformCredential{}, nil)
	postRepo.On("MarkCancelled", mock.Anything, int64(100), mock.Anything).Return(true, nil)

	uc := usecase.NewPublishUsecase(credRepo, postRepo, credUsecase, nil, nil)
	result := uc.PublishPost(context.Background(), post)

	require.NotNil(t, result.Err)
	assert.False(t, result.Success)
	assert.Equal(t, model.ErrNoAccountConnected, result.Err.Kind)
	postRepo.AssertCalled(t, "MarkCancelled", mock.Anything, int64(100), result.Err.UserMessage())
	credUsecase.AssertNotCalled(t, "EnsureValid", mock.Anything, mock.Anything)
}

func TestPublishUsecase_AuthFailurePropagates(t *testing.T) {
	credRepo := new(MockCredentialRepository)
	postRepo := new(MockScheduledPostRepository)
	credUsecase := new(MockCredentialUsecase)

	post := twitterPost()
	cred := twitterCredential()
	credRepo.On("GetActive", mock.Anything, "user-1", model.PlatformTwitter).
		Return([]*model.PlatformCredential{cred}, nil)
	authErr := model.NewPublishError(model.ErrRefreshFailed, model.PlatformTwitter, "invalid_grant")
	credUsecase.On("EnsureValid", mock.Anything, cred).Return(nil, authErr)
	postRepo.On("MarkCancelled", mock.Anything, int64(100), authErr.UserMessage()).Return(true, nil)

	uc := usecase.NewPublishUsecase(credRepo, postRepo, credUsecase, nil, nil)
	result := uc.PublishPost(context.Background(), post)

	require.NotNil(t, result.Err)
	assert.Equal(t, model.ErrRefreshFailed, result.Err.Kind)
	postRepo.AssertExpectations(t)
}

func TestPublishUsecase_InsufficientScope(t *testing.T) {
	credRepo := new(MockCredentialRepository)
	postRepo := new(MockScheduledPostRepository)
	credUsecase := new(MockCredentialUsecase)

	post := twitterPost()
	cred := twitterCredential()
	cred.Scopes = []string{"tweet.read"}
	credRepo.On("GetActive", mock.Anything, "user-1", model.PlatformTwitter).
		Return([]*model.PlatformCredential{cred}, nil)
	credUsecase.On("EnsureValid", mock.Anything, cred).Return(cred, nil)
	postRepo.On("MarkCancelled", mock.Anything, int64(100), mock.Anything).Return(true, nil)

	uc := usecase.NewPublishUsecase(credRepo, postRepo, credUsecase, nil, nil)
	result := uc.PublishPost(context.Background(), post)

	require.NotNil(t, result.Err)
	assert.Equal(t, model.ErrInsufficientScope, result.Err.Kind)
	assert.True(t, result.Err.Terminal())
	postRepo.AssertExpectations(t)
}

func TestPublishUsecase_SuccessMarksPublished(t *testing.T) {
	credRepo := new(MockCredentialRepository)
	postRepo := new(MockScheduledPostRepository)
	credUsecase := new(MockCredentialUsecase)
	publisher := &MockPlatformPublisher{platform: model.PlatformTwitter}

	post := twitterPost()
	cred := twitterCredential()
	credRepo.On("GetActive", mock.Anything, "user-1", model.PlatformTwitter).
		Return([]*model.PlatformCredential{cred}, nil)
	credUsecase.On("EnsureValid", mock.Anything, cred).Return(cred, nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(c *model.PublishContent) bool {
		return c.Post == post && c.Credential == cred
	})).Return(model.PublishOK("tw-1", "https://x.com/i/web/status/tw-1"))
	postRepo.On("MarkPublished", mock.Anything, int64(100), "tw-1", "https://x.com/i/web/status/tw-1", mock.Anything).
		Return(true, nil)

	uc := usecase.NewPublishUsecase(credRepo, postRepo, credUsecase,
		[]repository.IPlatformPublisher{publisher}, nil)
	result := uc.PublishPost(context.Background(), post)

	assert.True(t, result.Success)
	assert.Equal(t, "tw-1", result.PostID)
	postRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPublishUsecase_FirstActiveCredentialWins(t *testing.T) {
	credRepo := new(MockCredentialRepository)
	postRepo := new(MockScheduledPostRepository)
	credUsecase := new(MockCredentialUsecase)
	publisher := &MockPlatformPublisher{platform: model.PlatformTwitter}

	post := twitterPost()
	first := twitterCredential()
	second := twitterCredential()
	second.ID = 2
	credRepo.On("GetActive", mock.Anything, "user-1", model.PlatformTwitter).
		Return([]*model.PlatformCredential{first, second}, nil)
	credUsecase.On("EnsureValid", mock.Anything, first).Return(first, nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(model.PublishOK("tw-2", "u"))
	postRepo.On("MarkPublished", mock.Anything, int64(100), "tw-2", "u", mock.Anything).Return(true, nil)

	uc := usecase.NewPublishUsecase(credRepo, postRepo, credUsecase,
		[]repository.IPlatformPublisher{publisher}, nil)
	result := uc.PublishPost(context.Background(), post)

	assert.True(t, result.Success)
	credUsecase.AssertNotCalled(t, "EnsureValid", mock.Anything, second)
}

func TestPublishUsecase_TransientFailureLeavesPostScheduled(t *testing.T) {
	credRepo := new(MockCredentialRepository)
	postRepo := new(MockScheduledPostRepository)
	credUsecase := new(MockCredentialUsecase)
	publisher := &MockPlatformPublisher{platform: model.PlatformTwitter}

	post := twitterPost()
	cred := twitterCredential()
	credRepo.On("GetActive", mock.Anything, "user-1", model.PlatformTwitter).
		Return([]*model.PlatformCredential{cred}, nil)
	credUsecase.On("EnsureValid", mock.Anything, cred).Return(cred, nil)
	publisher.On("Publish", mock.Anything, mock.Anything).
		Return(model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, model.PlatformTwitter, "503")))

	uc := usecase.NewPublishUsecase(credRepo, postRepo, credUsecase,
		[]repository.IPlatformPublisher{publisher}, nil)
	result := uc.PublishPost(context.Background(), post)

	require.NotNil(t, result.Err)
	assert.False(t, result.Err.Terminal())
	postRepo.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything, mock.Anything)
	postRepo.AssertNotCalled(t, "IncrementRetry", mock.Anything, mock.Anything, mock.Anything)
}
