package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"social-publisher/domain/model"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache stores computed scheduling suggestions per (user, platform).
// A nil client degrades to a no-op so the engine works without Redis.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSuggestionCache(client *redis.Client, ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{client: client, ttl: ttl}
}

func suggestionKey(userID string, platform model.Platform) string {
	return fmt.Sprintf("suggestion:%s:%s", userID, platform)
}

func (c *SuggestionCache) Get(ctx context.Context, userID string, platform model.Platform) (*model.SchedulingSuggestion, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, suggestionKey(userID, platform)).Bytes()
	if err != nil {
		return nil, false
	}
	var s model.SchedulingSuggestion
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	// A cached suggestion already in the past is useless.
	if !s.SuggestedAt.After(time.Now()) {
		return nil, false
	}
	return &s, true
}

func (c *SuggestionCache) Set(ctx context.Context, userID string, s *model.SchedulingSuggestion) {
	if c == nil || c.client == nil || s == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, suggestionKey(userID, s.Platform), raw, c.ttl).Err()
}
