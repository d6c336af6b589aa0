package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/clients/media"
	"social-publisher/infrastructure/logger"
)

// Client publishes to a Facebook page through the Graph API. The target page id
// is resolved from the credential's metadata; page access tokens are stored as
// the credential's access token at connect time.
type Client struct {
	httpClient *http.Client
	fetcher    *media.Fetcher
	baseURL    string
}

func NewClient(httpClient *http.Client, fetcher *media.Fetcher) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{httpClient: httpClient, fetcher: fetcher, baseURL: "https://graph.facebook.com/v19.0"}
}

// SetBaseURL overrides the Graph API root. Intended for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) Platform() model.Platform { return model.PlatformFacebook }

func (c *Client) Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult {
	post := content.Post
	cred := content.Credential

	pageID := cred.Metadata["page_id"]
	if pageID == "" {
		return model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, model.PlatformFacebook,
			"credential has no linked facebook page"))
	}

	var (
		id  string
		err error
	)
	switch post.ContentType {
	case model.ContentTypeImage:
		id, err = c.postPhoto(ctx, pageID, cred.AccessToken, post)
	case model.ContentTypeVideo:
		id, err = c.postVideo(ctx, pageID, cred.AccessToken, post)
	default:
		id, err = c.postFeed(ctx, pageID, cred.AccessToken, post)
	}
	if err != nil {
		if mfe, ok := err.(*mediaError); ok {
			return model.PublishFail(model.WrapPublishError(model.ErrMediaFetch, model.PlatformFacebook, mfe.cause))
		}
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformFacebook, err))
	}

	res := model.PublishOK(id, fmt.Sprintf("https://www.facebook.com/%s", id))
	res.Metadata = map[string]string{"page_id": pageID}
	return res
}

type mediaError struct{ cause error }

func (e *mediaError) Error() string { return e.cause.Error() }

// postFeed publishes a text or link post to the page feed.
func (c *Client) postFeed(ctx context.Context, pageID, token string, post *model.ScheduledPost) (string, error) {
	form := url.Values{}
	form.Set("message", composeMessage(post))
	if post.ContentType == model.ContentTypeLink && post.ContentURL != "" {
		form.Set("link", post.ContentURL)
	}
	form.Set("access_token", token)
	return c.postForm(ctx, fmt.Sprintf("%s/%s/feed", c.baseURL, url.PathEscape(pageID)), form)
}

// postPhoto publishes an image by URL; Graph downloads it server side.
func (c *Client) postPhoto(ctx context.Context, pageID, token string, post *model.ScheduledPost) (string, error) {
	form := url.Values{}
	form.Set("url", post.ContentURL)
	form.Set("caption", composeMessage(post))
	form.Set("access_token", token)
	return c.postForm(ctx, fmt.Sprintf("%s/%s/photos", c.baseURL, url.PathEscape(pageID)), form)
}

// postVideo uploads video bytes as a single multipart request.
func (c *Client) postVideo(ctx context.Context, pageID, token string, post *model.ScheduledPost) (string, error) {
	data, _, err := c.fetcher.Fetch(ctx, post.ContentURL)
	if err != nil {
		return "", &mediaError{cause: err}
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("source", "video.mp4")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	_ = w.WriteField("title", post.Title)
	_ = w.WriteField("description", composeMessage(post))
	_ = w.WriteField("access_token", token)
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s/videos", c.baseURL, url.PathEscape(pageID)), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("facebook request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		logger.GetLogger().WithField("status", resp.StatusCode).Warn("Facebook publish rejected")
		return "", fmt.Errorf("facebook returned status %d: %s", resp.StatusCode, string(raw))
	}
	var out struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("facebook response malformed: %w", err)
	}
	// Photo posts return both ids; the feed post id is the linkable one.
	if out.PostID != "" {
		return out.PostID, nil
	}
	if out.ID == "" {
		return "", fmt.Errorf("facebook response missing post id")
	}
	return out.ID, nil
}

func composeMessage(post *model.ScheduledPost) string {
	parts := []string{post.Title}
	if post.Description != "" {
		parts = append(parts, post.Description)
	}
	if len(post.Tags) > 0 {
		tags := make([]string, 0, len(post.Tags))
		for _, t := range post.Tags {
			if !strings.HasPrefix(t, "#") {
				t = "#" + t
			}
			tags = append(tags, t)
		}
		parts = append(parts, strings.Join(tags, " "))
	}
	return strings.Join(parts, "\n\n")
}
