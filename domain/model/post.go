package model

import "time"

// Post status values. published and cancelled are terminal; the dispatch loop never
// touches a post again once it reaches either.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusCancelled = "cancelled"
)

// Content types a scheduled post can carry.
const (
	ContentTypeVideo = "video"
	ContentTypeImage = "image"
	ContentTypeText  = "text"
	ContentTypeLink  = "link"
)

// ScheduledPost is the unit of publishing work. Owned by the creating user; after
// creation only the orchestrator and dispatch loop mutate its status fields.
type ScheduledPost struct {
	ID               int64             `json:"id"`
	UserID           string            `json:"user_id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	ContentType      string            `json:"content_type"`
	Platform         Platform          `json:"platform"`
	Status           string            `json:"status"`
	ScheduledAt      time.Time         `json:"scheduled_at"`
	ContentURL       string            `json:"content_url,omitempty"`
	ThumbnailURL     string            `json:"thumbnail_url,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	RetryCount       int               `json:"retry_count"`
	MaxRetries       int               `json:"max_retries"`
	PlatformPostID   string            `json:"platform_post_id,omitempty"`
	PlatformMetadata map[string]string `json:"platform_metadata,omitempty"`
	PublishingError  *string           `json:"publishing_error,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Terminal reports whether the post has reached a state the dispatch loop must not
// transition out of.
func (p *ScheduledPost) Terminal() bool {
	return p.Status == PostStatusPublished || p.Status == PostStatusCancelled
}

// ValidContentType reports whether t is one of the supported content types.
func ValidContentType(t string) bool {
	switch t {
	case ContentTypeVideo, ContentTypeImage, ContentTypeText, ContentTypeLink:
		return true
	}
	return false
}
