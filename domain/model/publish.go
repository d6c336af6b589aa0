package model

// PublishContent is the platform-neutral payload handed to an adapter. It carries
// the already-validated credential so adapters never touch the credential store.
type PublishContent struct {
	Post       *ScheduledPost
	Credential *PlatformCredential
}

// PublishResult is the uniform contract every adapter returns. Adapters never
// return a Go error past their boundary; failures are folded into Err.
type PublishResult struct {
	Success  bool              `json:"success"`
	PostID   string            `json:"post_id,omitempty"`
	URL      string            `json:"url,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Err      *PublishError     `json:"error,omitempty"`
}

// Publishing success shorthand.
func PublishOK(postID, url string) *PublishResult {
	return &PublishResult{Success: true, PostID: postID, URL: url}
}

// PublishFail wraps a publish error into a failed result.
func PublishFail(err *PublishError) *PublishResult {
	return &PublishResult{Success: false, Err: err}
}
