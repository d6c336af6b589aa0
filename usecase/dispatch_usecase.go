package usecase

import (
	"context"
	"sync"
	"time"

	"social-publisher/domain/model"
	"social-publisher/domain/repository"
	"social-publisher/infrastructure/logger"

	"golang.org/x/sync/errgroup"
)

// DispatchStats summarizes one pass over the due-post set.
type DispatchStats struct {
	Processed int `json:"processed"`
	Published int `json:"published"`
	Retried   int `json:"retried"`
	Cancelled int `json:"cancelled"`
}

type IDispatchUsecase interface {
	// ProcessDuePosts runs one dispatch pass. Safe to invoke concurrently with
	// another pass: terminal posts are excluded at query time and every state
	// transition is a conditional update.
	ProcessDuePosts(ctx context.Context) (DispatchStats, error)
}

type dispatchUsecase struct {
	postRepo    repository.IScheduledPost
	publisher   IPublishUsecase
	staleness   time.Duration
	batchSize   int
	parallelism int
	metrics     MetricsRecorder
	now         func() time.Time
}

func NewDispatchUsecase(
	postRepo repository.IScheduledPost,
	publisher IPublishUsecase,
	staleness time.Duration,
	batchSize, parallelism int,
	m MetricsRecorder,
) IDispatchUsecase {
	if m == nil {
		m = noopMetrics{}
	}
	if parallelism < 1 {
		parallelism = 1
	}
	return &dispatchUsecase{
		postRepo:    postRepo,
		publisher:   publisher,
		staleness:   staleness,
		batchSize:   batchSize,
		parallelism: parallelism,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *dispatchUsecase) ProcessDuePosts(ctx context.Context) (DispatchStats, error) {
	now := u.now()
	// Posts older than the staleness bound are not resurrected; they stay
	// scheduled until an operator reschedules or cancels them.
	due, err := u.postRepo.GetDue(ctx, now.Add(-u.staleness), now, u.batchSize)
	if err != nil {
		return DispatchStats{}, err
	}

	var (
		mu    sync.Mutex
		stats DispatchStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.parallelism)

	for _, post := range due {
		post := post
		g.Go(func() error {
			outcome := u.dispatchOne(gctx, post)
			mu.Lock()
			stats.Processed++
			switch outcome {
			case model.PostStatusPublished:
				stats.Published++
			case model.PostStatusScheduled:
				stats.Retried++
			case model.PostStatusCancelled:
				stats.Cancelled++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	u.metrics.RecordDispatchPass()
	if stats.Processed > 0 {
		logger.GetLogger().WithFields(map[string]interface{}{
			"processed": stats.Processed,
			"published": stats.Published,
			"retried":   stats.Retried,
			"cancelled": stats.Cancelled,
		}).Info("Dispatch pass completed")
	}
	return stats, nil
}

// dispatchOne publishes a single due post and applies the retry state machine.
// Returns the status the post ended the attempt in.
func (u *dispatchUsecase) dispatchOne(ctx context.Context, post *model.ScheduledPost) string {
	result := u.publisher.PublishPost(ctx, post)

	if result.Success {
		return model.PostStatusPublished
	}
	if result.Err != nil && result.Err.Terminal() {
		// The orchestrator already cancelled the post.
		return model.PostStatusCancelled
	}

	// Transient failure: retry in place until the budget is exhausted.
	errMsg := "publish attempt failed"
	userMsg := errMsg
	if result.Err != nil {
		errMsg = result.Err.Error()
		userMsg = result.Err.UserMessage()
	}

	if post.RetryCount+1 >= post.MaxRetries {
		applied, err := u.postRepo.MarkCancelled(ctx, post.ID, userMsg)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Failed to cancel exhausted post")
			return model.PostStatusScheduled
		}
		if applied {
			u.metrics.RecordCancelled()
			logger.GetLogger().WithFields(map[string]interface{}{
				"post_id":     post.ID,
				"retry_count": post.RetryCount + 1,
				"error":       errMsg,
			}).Warn("Post cancelled after exhausting retries")
		}
		return model.PostStatusCancelled
	}

	applied, err := u.postRepo.IncrementRetry(ctx, post.ID, userMsg)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to increment retry count")
		return model.PostStatusScheduled
	}
	if applied {
		u.metrics.RecordRetried()
	}
	return model.PostStatusScheduled
}
