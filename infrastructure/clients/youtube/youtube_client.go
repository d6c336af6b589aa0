package youtube

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/clients/media"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Client publishes videos to YouTube through the Data API. The service client
// handles the resumable upload protocol; the access token must already be valid
// when Publish is called.
type Client struct {
	httpClient *http.Client
	fetcher    *media.Fetcher
	// newService is swappable so tests can avoid real API construction.
	newService func(ctx context.Context, token string) (*yt.Service, error)
}

func NewClient(httpClient *http.Client, fetcher *media.Fetcher) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	c := &Client{httpClient: httpClient, fetcher: fetcher}
	c.newService = func(ctx context.Context, token string) (*yt.Service, error) {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		return yt.NewService(ctx, option.WithTokenSource(src))
	}
	return c
}

func (c *Client) Platform() model.Platform { return model.PlatformYouTube }

func (c *Client) Publish(ctx context.Context, content *model.PublishContent) *model.PublishResult {
	post := content.Post
	cred := content.Credential

	if post.ContentType != model.ContentTypeVideo {
		return model.PublishFail(model.NewPublishError(model.ErrPlatformAPI, model.PlatformYouTube,
			fmt.Sprintf("youtube does not support %s posts", post.ContentType)))
	}

	data, _, err := c.fetcher.Fetch(ctx, post.ContentURL)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrMediaFetch, model.PlatformYouTube, err))
	}

	service, err := c.newService(ctx, cred.AccessToken)
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformYouTube,
			fmt.Errorf("creating youtube service: %w", err)))
	}

	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       post.Title,
			Description: buildDescription(post),
			Tags:        post.Tags,
		},
		Status: &yt.VideoStatus{PrivacyStatus: "public"},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.Media(bytes.NewReader(data))
	response, err := call.Context(ctx).Do()
	if err != nil {
		return model.PublishFail(model.WrapPublishError(model.ErrPlatformAPI, model.PlatformYouTube,
			fmt.Errorf("video insert failed: %w", err)))
	}

	res := model.PublishOK(response.Id, fmt.Sprintf("https://www.youtube.com/watch?v=%s", response.Id))
	if response.Snippet != nil {
		res.Metadata = map[string]string{"channel_id": response.Snippet.ChannelId}
	}
	return res
}

func buildDescription(post *model.ScheduledPost) string {
	desc := post.Description
	if len(post.Tags) > 0 {
		tags := make([]string, 0, len(post.Tags))
		for _, t := range post.Tags {
			if !strings.HasPrefix(t, "#") {
				t = "#" + t
			}
			tags = append(tags, t)
		}
		if desc != "" {
			desc += "\n\n"
		}
		desc += strings.Join(tags, " ")
	}
	return desc
}
