package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/clients/media"
)

func TestTwitterClient_TextTweet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		var payload struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload.Text, "short update")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"190001"}}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), media.NewFetcher(server.Client()))
	client.SetBaseURLs(server.URL, server.URL)

	result := client.Publish(context.Background(), &model.PublishContent{
		Post: &model.ScheduledPost{
			Title:       "short update",
			ContentType: model.ContentTypeText,
			Platform:    model.PlatformTwitter,
		},
		Credential: &model.PlatformCredential{AccessToken: "token"},
	})

	require.Nil(t, result.Err)
	assert.Equal(t, "190001", result.PostID)
	assert.Equal(t, "https://twitter.com/i/web/status/190001", result.URL)
}

func TestTwitterClient_ImageTweetRunsUploadSequence(t *testing.T) {
	mediaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg bytes"))
	}))
	defer mediaServer.Close()

	var commands []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.1/media/upload.json":
			var command string
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				require.NoError(t, r.ParseMultipartForm(8<<20))
				command = r.FormValue("command")
				_, _, err := r.FormFile("media")
				require.NoError(t, err)
			} else {
				require.NoError(t, r.ParseForm())
				command = r.PostForm.Get("command")
			}
			commands = append(commands, command)
			w.Write([]byte(`{"media_id_string":"mid-1"}`))
		case "/2/tweets":
			var payload struct {
				Media struct {
					MediaIDs []string `json:"media_ids"`
				} `json:"media"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, []string{"mid-1"}, payload.Media.MediaIDs)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"190002"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.Client(), media.NewFetcher(server.Client()))
	client.SetBaseURLs(server.URL, server.URL)

	result := client.Publish(context.Background(), &model.PublishContent{
		Post: &model.ScheduledPost{
			Title:       "pic tweet",
			ContentType: model.ContentTypeImage,
			Platform:    model.PlatformTwitter,
			ContentURL:  mediaServer.URL + "/pic.jpg",
		},
		Credential: &model.PlatformCredential{AccessToken: "token"},
	})

	require.Nil(t, result.Err)
	assert.Equal(t, []string{"INIT", "APPEND", "FINALIZE"}, commands)
	assert.Equal(t, "190002", result.PostID)
}

func TestTwitterClient_APIErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client(), media.NewFetcher(server.Client()))
	client.SetBaseURLs(server.URL, server.URL)

	result := client.Publish(context.Background(), &model.PublishContent{
		Post:       &model.ScheduledPost{Title: "t", ContentType: model.ContentTypeText, Platform: model.PlatformTwitter},
		Credential: &model.PlatformCredential{AccessToken: "token"},
	})

	require.NotNil(t, result.Err)
	assert.Equal(t, model.ErrPlatformAPI, result.Err.Kind)
	assert.False(t, result.Err.Terminal())
}

func TestTweetText_TruncatesAt280(t *testing.T) {
	post := &model.ScheduledPost{
		Title:       strings.Repeat("a", 300),
		ContentType: model.ContentTypeText,
	}
	text := tweetText(post)
	assert.Len(t, text, 280)
	assert.True(t, strings.HasSuffix(text, "..."))
}
