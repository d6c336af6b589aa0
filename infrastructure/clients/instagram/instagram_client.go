package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"social-publisher/domain/model"
)

// Client publishes to an Instagram professional account through the Graph API.
// Publishing is a two-step sequence: create a media container referencing the
// hosted media URL, then publish the container.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{httpClient: httpClient, baseURL: "https://graph.facebook.com/v19.0"}
}

// SetBaseURL overrides the Graph API root. Intended for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) Platform() model.Platform { return model.PlatformInstagram }

func (c *Client) Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult {
	post := content.Post
	cred := content.Credential

	igUserID := cred.Metadata["ig_user_id"]
	if igUserID == "" {
		igUserID = cred.AccountID
	}
	if igUserID == "" {
		return model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, model.PlatformInstagram,
			"credential has no instagram user id"))
	}
	if post.ContentURL == "" {
		return model.PublishFail(model.NewPublishError(model.ErrMediaFetch, model.PlatformInstagram,
			"instagram posts require a hosted media url"))
	}

	containerID, err := c.createContainer(ctx, igUserID, cred.AccessToken, post)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformInstagram, err))
	}
	mediaID, err := c.publishContainer(ctx, igUserID, cred.AccessToken, containerID)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformInstagram, err))
	}

	link := c.permalink(ctx, mediaID, cred.AccessToken)
	if link == "" {
		link = fmt.Sprintf("https://www.instagram.com/p/%s/", mediaID)
	}
	res := model.PublishOK(mediaID, link)
	res.Metadata = map[string]string{"container_id": containerID}
	return res
}

func (c *Client) createContainer(ctx context.Context, igUserID, token string, post *model.ScheduledPost) (string, error) {
	form := url.Values{}
	switch post.ContentType {
	case model.ContentTypeVideo:
		form.Set("media_type", "REELS")
		form.Set("video_url", post.ContentURL)
	default:
		form.Set("image_url", post.ContentURL)
	}
	form.Set("caption", caption(post))
	form.Set("access_token", token)

	id, err := c.postForm(ctx, fmt.Sprintf("%s/%s/media", c.baseURL, url.PathEscape(igUserID)), form)
	if err != nil {
		return "", fmt.Errorf("creating media container: %w", err)
	}
	return id, nil
}

func (c *Client) publishContainer(ctx context.Context, igUserID, token, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", token)

	id, err := c.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", c.baseURL, url.PathEscape(igUserID)), form)
	if err != nil {
		return "", fmt.Errorf("publishing media container: %w", err)
	}
	return id, nil
}

// permalink looks up the canonical post URL; best effort only.
func (c *Client) permalink(ctx context.Context, mediaID, token string) string {
	u := fmt.Sprintf("%s/%s?fields=permalink&access_token=%s", c.baseURL, url.PathEscape(mediaID), url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ""
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var out struct {
		Permalink string `json:"permalink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	return out.Permalink
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("instagram request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("instagram returned status %d: %s", resp.StatusCode, string(raw))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("instagram response malformed: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("instagram response missing id")
	}
	return out.ID, nil
}

func caption(post *model.ScheduledPost) string {
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
