package repository

import (
	"context"
	"time"

	"social-publisher/domain/model"
)

// IScheduledPost persists scheduled posts. The Mark* methods are conditional
// writes: they only apply while the row is still in status=scheduled and report
// whether the transition happened, which is the engine's double-publish guard.
type IScheduledPost interface {
	Create(ctx context.Context, post *model.ScheduledPost) error
	GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error)
	GetByUser(ctx context.Context, userID, status string) ([]*model.ScheduledPost, error)
	// GetDue returns scheduled posts whose timestamp falls inside [from, to].
	GetDue(ctx context.Context, from, to time.Time, limit int) ([]*model.ScheduledPost, error)
	// GetPublishedSince returns published posts for timing analysis.
	GetPublishedSince(ctx context.Context, userID string, platform model.Platform, since time.Time) ([]*model.ScheduledPost, error)

	MarkPublished(ctx context.Context, id int64, platformPostID, url string, metadata map[string]string) (bool, error)
	MarkCancelled(ctx context.Context, id int64, publishingError string) (bool, error)
	IncrementRetry(ctx context.Context, id int64, publishingError string) (bool, error)
	// Reschedule moves a still-scheduled post to a new timestamp and resets its
	// retry count.
	Reschedule(ctx context.Context, id int64, at time.Time) (bool, error)
}
