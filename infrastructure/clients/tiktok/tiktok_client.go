package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/clients/media"
)

// Client publishes videos through the TikTok content posting API: init the
// direct post (returns an upload URL and publish id), then PUT the bytes with a
// Content-Range header. TikTok processes asynchronously; the publish id is the
// canonical reference.
type Client struct {
	httpClient *http.Client
	fetcher    *media.Fetcher
	baseURL    string
}

func NewClient(httpClient *http.Client, fetcher *media.Fetcher) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{httpClient: httpClient, fetcher: fetcher, baseURL: "https://open.tiktokapis.com"}
}

// SetBaseURL overrides the API root. Intended for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) Platform() model.Platform { return model.PlatformTikTok }

func (c *Client) Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult {
	post := content.Post
	cred := content.Credential

	if post.ContentType != model.ContentTypeVideo {
		return model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, model.PlatformTikTok,
			fmt.Sprintf("tiktok does not support %s posts", post.ContentType)))
	}

	data, _, err := c.fetcher.Fetch(ctx, post.ContentURL)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrMediaFetch, model.PlatformTikTok, err))
	}

	uploadURL, publishID, err := c.initPost(ctx, cred.AccessToken, post, len(data))
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformTikTok, err))
	}

	if err := c.uploadVideo(ctx, uploadURL, data); err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformTikTok, err))
	}

	link := ""
	if cred.AccountName != "" {
		link = fmt.Sprintf("https://www.tiktok.com/@%s", cred.AccountName)
	} else {
		link = "https://www.tiktok.com"
	}
	res := model.PublishOK(publishID, link)
	res.Metadata = map[string]string{"publish_id": publishID, "status": "processing"}
	return res
}

type initResponse struct {
	Data struct {
		PublishID string `json:"publish_id"`
		UploadURL string `json:"upload_url"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) initPost(ctx context.Context, token string, post *model.ScheduledPost, size int) (string, string, error) {
	payload := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":         post.Title,
			"privacy_level": "PUBLIC_TO_EVERYONE",
		},
		"source_info": map[string]interface{}{
			"source":            "FILE_UPLOAD",
			"video_size":        size,
			"chunk_size":        size,
			"total_chunk_count": 1,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/post/publish/video/init/", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("post init failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("post init returned status %d: %s", resp.StatusCode, string(raw))
	}
	var out initResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", "", fmt.Errorf("post init response malformed: %w", err)
	}
	if out.Error.Code != "" && out.Error.Code != "ok" {
		return "", "", fmt.Errorf("post init rejected: %s: %s", out.Error.Code, out.Error.Message)
	}
	if out.Data.UploadURL == "" || out.Data.PublishID == "" {
		return "", "", fmt.Errorf("post init response missing upload url or publish id")
	}
	return out.Data.UploadURL, out.Data.PublishID, nil
}

// uploadVideo PUTs the whole file as a single chunk.
func (c *Client) uploadVideo(ctx context.Context, uploadURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", len(data)-1, len(data)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("video upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("video upload returned status %d", resp.StatusCode)
	}
	return nil
}
