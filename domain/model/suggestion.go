package model

import "time"

// SchedulingSuggestion is a derived recommendation for when to publish next on a
// platform. Computed on demand from published-post history, cached, never stored
// as authoritative state.
type SchedulingSuggestion struct {
	Platform       Platform  `json:"platform"`
	SuggestedAt    time.Time `json:"suggested_at"`
	Confidence     int       `json:"confidence"` // 0-100
	EstimatedReach int       `json:"estimated_reach"`
	Reason         string    `json:"reason"`
}

// EngagementSample is one published post's contribution to the timing analysis.
type EngagementSample struct {
	PublishedAt time.Time
	Engagement  int64 // likes+comments+shares when known, 0 otherwise
}
