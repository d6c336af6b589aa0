package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"social-publisher/domain/model"
)

// Mock implementations

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) GetActive(ctx context.Context, userID string, platform model.Platform) ([]*model.PlatformCredential, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformCredential), args.Error(1)
}

func (m *MockCredentialRepository) GetByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformCredential), args.Error(1)
}

func (m *MockCredentialRepository) Upsert(ctx context.Context, cred *model.PlatformCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) UpdateTokens(ctx context.Context, cred *model.PlatformCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTokenRefresher struct {
	mock.Mock
}

func (m *MockTokenRefresher) Refresh(ctx context.Context, cred *model.PlatformCredential) (*model.RefreshedToken, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshedToken), args.Error(1)
}

type MockScheduledPostRepository struct {
	mock.Mock
}

func (m *MockScheduledPostRepository) Create(ctx context.Context, post *model.ScheduledPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockScheduledPostRepository) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepository) GetByUser(ctx context.Context, userID, status string) ([]*model.ScheduledPost, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepository) GetDue(ctx context.Context, from, to time.Time, limit int) ([]*model.ScheduledPost, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepository) GetPublishedSince(ctx context.Context, userID string, platform model.Platform, since time.Time) ([]*model.ScheduledPost, error) {
	args := m.Called(ctx, userID, platform, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledPost), args.Error(1)
}

func (m *MockScheduledPostRepository) MarkPublished(ctx context.Context, id int64, platformPostID, url string, metadata map[string]string) (bool, error) {
	args := m.Called(ctx, id, platformPostID, url, metadata)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduledPostRepository) MarkCancelled(ctx context.Context, id int64, publishingError string) (bool, error) {
	args := m.Called(ctx, id, publishingError)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduledPostRepository) IncrementRetry(ctx context.Context, id int64, publishingError string) (bool, error) {
	args := m.Called(ctx, id, publishingError)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduledPostRepository) Reschedule(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type MockPlatformPublisher struct {
	mock.Mock
	platform model.Platform
}

func (m *MockPlatformPublisher) Platform() model.Platform {
	return m.platform
}

func (m *MockPlatformPublisher) Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.PublishResult)
}

type MockCredentialUsecase struct {
	mock.Mock
}

func (m *MockCredentialUsecase) EnsureValid(ctx context.Context, cred *model.PlatformCredential) (*model.PlatformCredential, *model.PublishError) {
	args := m.Called(ctx, cred)
	var pErr *model.PublishError
	if args.Get(1) != nil {
		pErr = args.Get(1).(*model.PublishError)
	}
	if args.Get(0) == nil {
		return nil, pErr
	}
	return args.Get(0).(*model.PlatformCredential), pErr
}

func (m *MockCredentialUsecase) GetByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformCredential), args.Error(1)
}

func (m *MockCredentialUsecase) Disconnect(ctx context.Context, userID string, platform model.Platform) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

type MockPublishUsecase struct {
	mock.Mock
}

func (m *MockPublishUsecase) PublishPost(ctx context.Context, post *model.ScheduledPost) *model.PublishResult {
	args := m.Called(ctx, post)
	return args.Get(0).(*model.PublishResult)
}
