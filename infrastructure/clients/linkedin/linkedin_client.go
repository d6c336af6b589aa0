package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/clients/media"
)

// Client publishes member posts through the LinkedIn UGC API. Media posts are a
// three-step sequence: register an upload slot, PUT the binary to the returned
// URL, then create the ugcPost referencing the asset URN.
type Client struct {
	httpClient *http.Client
	fetcher    *media.Fetcher
	baseURL    string
}

func NewClient(httpClient *http.Client, fetcher *media.Fetcher) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{httpClient: httpClient, fetcher: fetcher, baseURL: "https://api.linkedin.com"}
}

// SetBaseURL overrides the API root. Intended for tests; the registered upload
// URL is returned by the API itself and needs no override.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) Platform() model.Platform { return model.PlatformLinkedIn }

func (c *Client) Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult {
	post := content.Post
	cred := content.Credential

	if cred.AccountID == "" {
		return model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, model.PlatformLinkedIn,
			"credential has no member id"))
	}
	author := "urn:li:person:" + cred.AccountID

	var assetURN string
	if post.ContentType == model.ContentTypeImage || post.ContentType == model.ContentTypeVideo {
		data, _, err := c.fetcher.Fetch(ctx, post.ContentURL)
		if err != nil {
			return model.PublishFail(model.WrapPublishError(model.ErrMediaFetch, model.PlatformLinkedIn, err))
		}
		assetURN, err = c.uploadAsset(ctx, cred.AccessToken, author, post.ContentType, data)
		if err != nil {
			return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformLinkedIn, err))
		}
	}

	postURN, err := c.createPost(ctx, cred.AccessToken, author, assetURN, post)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformLinkedIn, err))
	}

	res := model.PublishOK(postURN, fmt.Sprintf("https://www.linkedin.com/feed/update/%s", url.PathEscape(postURN)))
	if assetURN != "" {
		res.Metadata = map[string]string{"asset": assetURN}
	}
	return res
}

// uploadAsset registers an upload slot and PUTs the media bytes into it.
func (c *Client) uploadAsset(ctx context.Context, token, author, contentType string, data []byte) (string, error) {
	recipe := "urn:li:digitalmediaRecipe:feedshare-image"
	if contentType == model.ContentTypeVideo {
		recipe = "urn:li:digitalmediaRecipe:feedshare-video"
	}
	registerBody := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{recipe},
			"owner":   author,
			"serviceRelationships": []map[string]string{
				{"relationshipType": "OWNER", "identifier": "urn:li:userGeneratedContent"},
			},
		},
	}
	raw, err := c.postJSON(ctx, token, c.baseURL+"/v2/assets?action=registerUpload", registerBody)
	if err != nil {
		return "", fmt.Errorf("registering upload: %w", err)
	}

	var reg struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism map[string]struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &reg); err != nil {
		return "", fmt.Errorf("register response malformed: %w", err)
	}
	uploadURL := ""
	for _, m := range reg.Value.UploadMechanism {
		if m.UploadURL != "" {
			uploadURL = m.UploadURL
		}
	}
	if uploadURL == "" || reg.Value.Asset == "" {
		return "", fmt.Errorf("register response missing upload url or asset")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("asset upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("asset upload returned status %d", resp.StatusCode)
	}
	return reg.Value.Asset, nil
}

func (c *Client) createPost(ctx context.Context, token, author, assetURN string, post *model.ScheduledPost) (string, error) {
	shareCategory := "NONE"
	var mediaList []map[string]interface{}
	switch {
	case assetURN != "" && post.ContentType == model.ContentTypeVideo:
		shareCategory = "VIDEO"
	case assetURN != "":
		shareCategory = "IMAGE"
	case post.ContentType == model.ContentTypeLink && post.ContentURL != "":
		shareCategory = "ARTICLE"
	}
	if assetURN != "" {
		mediaList = append(mediaList, map[string]interface{}{
			"status": "READY",
			"media":  assetURN,
			"title":  map[string]string{"text": post.Title},
		})
	} else if shareCategory == "ARTICLE" {
		mediaList = append(mediaList, map[string]interface{}{
			"status":      "READY",
			"originalUrl": post.ContentURL,
			"title":       map[string]string{"text": post.Title},
		})
	}

	text := post.Title
	if post.Description != "" {
		text += "\n\n" + post.Description
	}
	shareContent := map[string]interface{}{
		"shareCommentary":    map[string]string{"text": text},
		"shareMediaCategory": shareCategory,
	}
	if len(mediaList) > 0 {
		shareContent["media"] = mediaList
	}
	body := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	raw, err := c.postJSON(ctx, token, c.baseURL+"/v2/ugcPosts", body)
	if err != nil {
		return "", fmt.Errorf("creating ugc post: %w", err)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("ugc post response malformed: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("ugc post response missing id")
	}
	return out.ID, nil
}

func (c *Client) postJSON(ctx context.Context, token, endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("linkedin returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
