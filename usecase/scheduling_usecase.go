package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"social-publisher/domain/model"
	"social-publisher/domain/repository"
	"social-publisher/infrastructure/cache"
	"social-publisher/infrastructure/logger"
)

// fallbackConfidence is the score attached to default-table suggestions.
const fallbackConfidence = 60

// platformDefault is the fixed fallback posting slot used when a user has too
// little history on a platform.
type platformDefault struct {
	hour    int
	weekday time.Weekday
}

var platformDefaults = map[model.Platform]platformDefault{
	model.PlatformYouTube:   {hour: 15, weekday: time.Saturday},
	model.PlatformInstagram: {hour: 11, weekday: time.Wednesday},
	model.PlatformTikTok:    {hour: 19, weekday: time.Tuesday},
	model.PlatformFacebook:  {hour: 13, weekday: time.Thursday},
	model.PlatformTwitter:   {hour: 9, weekday: time.Wednesday},
	model.PlatformLinkedIn:  {hour: 10, weekday: time.Tuesday},
}

type ISchedulingUsecase interface {
	// Suggest computes an advisory posting time per platform from up to 90 days
	// of the user's published history. Never mutates scheduling state.
	Suggest(ctx context.Context, userID string, platforms []model.Platform) ([]*model.SchedulingSuggestion, error)
}

type schedulingUsecase struct {
	postRepo    repository.IScheduledPost
	suggestions *cache.SuggestionCache
	historyDays int
	minSamples  int
	now         func() time.Time
}

func NewSchedulingUsecase(postRepo repository.IScheduledPost, suggestions *cache.SuggestionCache, historyDays, minSamples int) ISchedulingUsecase {
	return &schedulingUsecase{
		postRepo:    postRepo,
		suggestions: suggestions,
		historyDays: historyDays,
		minSamples:  minSamples,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *schedulingUsecase) Suggest(ctx context.Context, userID string, platforms []model.Platform) ([]*model.SchedulingSuggestion, error) {
	out := make([]*model.SchedulingSuggestion, 0, len(platforms))
	for _, platform := range platforms {
		if s, ok := u.suggestions.Get(ctx, userID, platform); ok {
			out = append(out, s)
			continue
		}
		s, err := u.suggestFor(ctx, userID, platform)
		if err != nil {
			return nil, err
		}
		u.suggestions.Set(ctx, userID, s)
		out = append(out, s)
	}
	return out, nil
}

func (u *schedulingUsecase) suggestFor(ctx context.Context, userID string, platform model.Platform) (*model.SchedulingSuggestion, error) {
	now := u.now()
	since := now.AddDate(0, 0, -u.historyDays)
	history, err := u.postRepo.GetPublishedSince(ctx, userID, platform, since)
	if err != nil {
		return nil, err
	}

	if len(history) < u.minSamples {
		def := platformDefaults[platform]
		return &model.SchedulingSuggestion{
			Platform:    platform,
			SuggestedAt: nextOccurrence(now, def.hour, def.weekday),
			Confidence:  fallbackConfidence,
			Reason: fmt.Sprintf("Only %d published posts in the last %d days; using the %s default slot (%s %02d:00)",
				len(history), u.historyDays, platform, def.weekday, def.hour),
		}, nil
	}

	// Best hour and best weekday are chosen independently, not as a joint
	// (hour, day) pair. Known limitation carried over from the original design.
	var hourScore [24]int64
	var dayScore [7]int64
	var totalEngagement int64
	for _, post := range history {
		w := engagementWeight(post)
		hourScore[post.ScheduledAt.Hour()] += w
		dayScore[int(post.ScheduledAt.Weekday())] += w
		totalEngagement += w
	}
	bestHour := argmax(hourScore[:])
	bestDay := time.Weekday(argmax(dayScore[:]))

	confidence := len(history) * 10
	if confidence > 100 {
		confidence = 100
	}
	avgEngagement := totalEngagement / int64(len(history))

	s := &model.SchedulingSuggestion{
		Platform:       platform,
		SuggestedAt:    nextOccurrence(now, bestHour, bestDay),
		Confidence:     confidence,
		EstimatedReach: int(avgEngagement),
		Reason: fmt.Sprintf("Based on %d published posts: engagement peaks around %02d:00 on %ss",
			len(history), bestHour, bestDay),
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"user_id":  userID,
		"platform": platform,
		"hour":     bestHour,
		"weekday":  bestDay.String(),
		"samples":  len(history),
	}).Debug("Computed scheduling suggestion")
	return s, nil
}

// engagementWeight sums the numeric engagement fields recorded in the post's
// platform metadata; posts without any count once.
func engagementWeight(post *model.ScheduledPost) int64 {
	var total int64
	for _, key := range []string{"likes", "comments", "shares"} {
		if v, ok := post.PlatformMetadata[key]; ok {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				total += n
			}
		}
	}
	if total == 0 {
		return 1
	}
	return total
}

func argmax(scores []int64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

// nextOccurrence projects the next strictly-future time with the given hour and
// weekday.
func nextOccurrence(now time.Time, hour int, weekday time.Weekday) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	dayOffset := (int(weekday) - int(now.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, dayOffset)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
