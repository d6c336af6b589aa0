package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/clients/media"
)

const chunkSize = 4 << 20 // upload APPEND segment size

// Client publishes tweets. Media goes through the v1.1 chunked upload protocol
// (INIT, APPEND per chunk, FINALIZE); the tweet itself is created on the v2 API.
type Client struct {
	httpClient    *http.Client
	fetcher       *media.Fetcher
	apiBaseURL    string
	uploadBaseURL string
}

func NewClient(httpClient *http.Client, fetcher *media.Fetcher) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		httpClient:    httpClient,
		fetcher:       fetcher,
		apiBaseURL:    "https://api.twitter.com",
		uploadBaseURL: "https://upload.twitter.com",
	}
}

// SetBaseURLs overrides the API roots. Intended for tests.
func (c *Client) SetBaseURLs(api, upload string) {
	c.apiBaseURL = api
	c.uploadBaseURL = upload
}

func (c *Client) Platform() model.Platform { return model.PlatformTwitter }

func (c *Client) Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult {
	post := content.Post
	token := content.Credential.AccessToken

	var mediaIDs []string
	if post.ContentType == model.ContentTypeImage || post.ContentType == model.ContentTypeVideo {
		data, contentType, err := c.fetcher.Fetch(ctx, post.ContentURL)
		if err != nil {
			return model.PublishFail(model.WrapPublishError(model.ErrMediaFetch, model.PlatformTwitter, err))
		}
		mediaID, err := c.uploadMedia(ctx, token, data, contentType, post.ContentType)
		if err != nil {
			return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformTwitter, err))
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	tweetID, err := c.createTweet(ctx, token, tweetText(post), mediaIDs)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformTwitter, err))
	}
	return model.PublishOK(tweetID, fmt.Sprintf("https://twitter.com/i/web/status/%s", tweetID))
}

// uploadMedia runs the INIT / APPEND / FINALIZE sequence.
func (c *Client) uploadMedia(ctx context.Context, token string, data []byte, contentType, postType string) (string, error) {
	category := "tweet_image"
	if postType == model.ContentTypeVideo {
		category = "tweet_video"
	}

	form := url.Values{}
	form.Set("command", "INIT")
	form.Set("total_bytes", strconv.Itoa(len(data)))
	form.Set("media_type", contentType)
	form.Set("media_category", category)
	initRes, err := c.uploadCommand(ctx, token, form, nil, "")
	if err != nil {
		return "", fmt.Errorf("media INIT: %w", err)
	}
	mediaID := initRes.MediaIDString
	if mediaID == "" {
		return "", fmt.Errorf("media INIT returned no media id")
	}

	for i, segment := 0, 0; i < len(data); i, segment = i+chunkSize, segment+1 {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		form := url.Values{}
		form.Set("command", "APPEND")
		form.Set("media_id", mediaID)
		form.Set("segment_index", strconv.Itoa(segment))
		if _, err := c.uploadCommand(ctx, token, form, data[i:end], "media"); err != nil {
			return "", fmt.Errorf("media APPEND segment %d: %w", segment, err)
		}
	}

	form = url.Values{}
	form.Set("command", "FINALIZE")
	form.Set("media_id", mediaID)
	if _, err := c.uploadCommand(ctx, token, form, nil, ""); err != nil {
		return "", fmt.Errorf("media FINALIZE: %w", err)
	}
	return mediaID, nil
}

type uploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

// uploadCommand posts one upload step; chunk bytes ride along as a multipart field.
func (c *Client) uploadCommand(ctx context.Context, token string, form url.Values, chunk []byte, fileField string) (*uploadResponse, error) {
	endpoint := c.uploadBaseURL + "/1.1/media/upload.json"

	var req *http.Request
	var err error
	if chunk != nil {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		for k := range form {
			_ = w.WriteField(k, form.Get(k))
		}
		part, ferr := w.CreateFormFile(fileField, "chunk")
		if ferr != nil {
			return nil, ferr
		}
		if _, ferr := part.Write(chunk); ferr != nil {
			return nil, ferr
		}
		if ferr := w.Close(); ferr != nil {
			return nil, ferr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
		if req != nil {
			req.Header.Set("Content-Type", w.FormDataContentType())
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upload returned status %d: %s", resp.StatusCode, string(raw))
	}
	out := &uploadResponse{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, out)
	}
	return out, nil
}

func (c *Client) createTweet(ctx context.Context, token, text string, mediaIDs []string) (string, error) {
	payload := map[string]interface{}{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]interface{}{"media_ids": mediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tweet create failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tweet create returned status %d: %s", resp.StatusCode, string(raw))
	}
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("tweet response malformed: %w", err)
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("tweet response missing id")
	}
	return out.Data.ID, nil
}

// tweetText folds title, description and tags into the 280 character budget.
func tweetText(post *model.ScheduledPost) string {
	parts := []string{post.Title}
	if post.Description != "" {
		parts = append(parts, post.Description)
	}
	if post.ContentType == model.ContentTypeLink && post.ContentURL != "" {
		parts = append(parts, post.ContentURL)
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
	text := strings.Join(parts, "\n")
	if len(text) > 280 {
		text = text[:277] + "..."
	}
	return text
}
