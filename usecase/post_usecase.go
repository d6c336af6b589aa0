package usecase

import (
	"context"
	"errors"
	"time"

	"social-publisher/domain/dto"
	"social-publisher/domain/model"
	"social-publisher/domain/repository"
)

const defaultMaxRetries = 3

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrNotOwner         = errors.New("post belongs to another user")
	ErrPostTerminal     = errors.New("post already reached a terminal state")
	ErrInvalidTransition = errors.New("post is not in a state that allows this operation")
)

type IPostUsecase interface {
	Create(ctx context.Context, userID string, req dto.CreatePostRequest) (*model.ScheduledPost, error)
	GetByUser(ctx context.Context, userID, status string) ([]*model.ScheduledPost, error)
	GetByID(ctx context.Context, userID string, id int64) (*model.ScheduledPost, error)
	Cancel(ctx context.Context, userID string, id int64) error
	Reschedule(ctx context.Context, userID string, id int64, at time.Time) error
}

type postUsecase struct {
	postRepo repository.IScheduledPost
	now      func() time.Time
}

func NewPostUsecase(postRepo repository.IScheduledPost) IPostUsecase {
	return &postUsecase{postRepo: postRepo, now: func() time.Time { return time.Now().UTC() }}
}

func (u *postUsecase) Create(ctx context.Context, userID string, req dto.CreatePostRequest) (*model.ScheduledPost, error) {
	platform, ok := model.ParsePlatform(req.Platform)
	if !ok {
		return nil, errors.New("unsupported platform: " + req.Platform)
	}
	if !model.ValidContentType(req.ContentType) {
		return nil, errors.New("unsupported content type: " + req.ContentType)
	}

	status := req.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	if status != model.PostStatusDraft && status != model.PostStatusScheduled {
		return nil, errors.New("status must be draft or scheduled")
	}
	if status == model.PostStatusScheduled {
		if !req.ScheduledAt.After(u.now()) {
			return nil, errors.New("scheduled_at must be in the future")
		}
	}
	// Media posts need something to upload.
	if (req.ContentType == model.ContentTypeVideo || req.ContentType == model.ContentTypeImage) && req.ContentURL == "" {
		return nil, errors.New("content_url is required for media posts")
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	post := &model.ScheduledPost{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		ContentType:  req.ContentType,
		Platform:     platform,
		Status:       status,
		ScheduledAt:  req.ScheduledAt.UTC(),
		ContentURL:   req.ContentURL,
		ThumbnailURL: req.ThumbnailURL,
		Tags:         req.Tags,
		MaxRetries:   maxRetries,
	}
	if err := u.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (u *postUsecase) GetByUser(ctx context.Context, userID, status string) ([]*model.ScheduledPost, error) {
	return u.postRepo.GetByUser(ctx, userID, status)
}

func (u *postUsecase) GetByID(ctx context.Context, userID string, id int64) (*model.ScheduledPost, error) {
	post, err := u.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}
	return post, nil
}

func (u *postUsecase) Cancel(ctx context.Context, userID string, id int64) error {
	post, err := u.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if post.Terminal() {
		return ErrPostTerminal
	}
	applied, err := u.postRepo.MarkCancelled(ctx, id, "cancelled by user")
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidTransition
	}
	return nil
}

func (u *postUsecase) Reschedule(ctx context.Context, userID string, id int64, at time.Time) error {
	post, err := u.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if post.Status != model.PostStatusScheduled {
		return ErrInvalidTransition
	}
	if !at.After(u.now()) {
		return errors.New("scheduled_at must be in the future")
	}
	applied, err := u.postRepo.Reschedule(ctx, id, at.UTC())
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidTransition
	}
	return nil
}
