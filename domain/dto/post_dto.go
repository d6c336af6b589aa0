package dto

import "time"

// CreatePostRequest creates a draft or scheduled post.
type CreatePostRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	ContentType  string    `json:"content_type" binding:"required"`
	Platform     string    `json:"platform" binding:"required"`
	Status       string    `json:"status"` // draft (default) or scheduled
	ScheduledAt  time.Time `json:"scheduled_at"`
	ContentURL   string    `json:"content_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Tags         []string  `json:"tags"`
	MaxRetries   int       `json:"max_retries"`
}

// ReschedulePostRequest moves a scheduled post to a new timestamp.
type ReschedulePostRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// SuggestionRequest asks the scheduling engine for per-platform suggestions.
type SuggestionRequest struct {
	Platforms []string `json:"platforms"`
}
