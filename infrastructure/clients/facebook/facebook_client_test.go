package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/clients/media"
)

func pageCredential() *model.PlatformCredential {
	return &model.PlatformCredential{
		Platform:    model.PlatformFacebook,
		AccessToken: "page-token",
		Metadata:    map[string]string{"page_id": "12345"},
	}
}

func TestFacebookClient_TextPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/12345/feed", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "page-token", r.PostForm.Get("access_token"))
		assert.Contains(t, r.PostForm.Get("message"), "hello world")
		assert.Contains(t, r.PostForm.Get("message"), "#launch")
		w.Write([]byte(`{"id":"12345_678"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), media.NewFetcher(server.Client()))
	client.SetBaseURL(server.URL)

	result := client.Publish(context.Background(), &model.PublishContent{
		Post: &model.ScheduledPost{
			Title:       "hello world",
			ContentType: model.ContentTypeText,
			Platform:    model.PlatformFacebook,
			Tags:        []string{"launch"},
		},
		Credential: pageCredential(),
	})

	require.Nil(t, result.Err)
	assert.True(t, result.Success)
	assert.Equal(t, "12345_678", result.PostID)
	assert.Equal(t, "https://www.facebook.com/12345_678", result.URL)
}

func TestFacebookClient_PhotoPostPrefersFeedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/12345/photos", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.example.com/pic.jpg", r.PostForm.Get("url"))
		w.Write([]byte(`{"id":"999","post_id":"12345_999"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), media.NewFetcher(server.Client()))
	client.SetBaseURL(server.URL)

	result := client.Publish(context.Background(), &model.PublishContent{
		Post: &model.ScheduledPost{
			Title:       "pic",
			ContentType: model.ContentTypeImage,
			Platform:    model.PlatformFacebook,
			ContentURL:  "https://cdn.example.com/pic.jpg",
		},
		Credential: pageCredential(),
	})

	require.Nil(t, result.Err)
	assert.Equal(t, "12345_999", result.PostID)
}

func TestFacebookClient_VideoUpload(t *testing.T) {
	mediaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("fake video bytes"))
	}))
	defer mediaServer.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/12345/videos", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("source")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "page-token", r.FormValue("access_token"))
		w.Write([]byte(`{"id":"777"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), media.NewFetcher(server.Client()))
	client.SetBaseURL(server.URL)

	result := client.Publish(context.Background(), &model.PublishContent{
		Post: &model.ScheduledPost{
			Title:       "clip",
			ContentType: model.ContentTypeVideo,
			Platform:    model.PlatformFacebook,
			ContentURL:  mediaServer.URL + "/clip.mp4",
		},
		Credential: pageCredential(),
	})

	require.Nil(t, result.Err)
	assert.Equal(t, "777", result.PostID)
}

func TestFacebookClient_MissingPageID(t *testing.T) {
	client := NewClient(nil, nil)

	cred := pageCredential()
	cred.Metadata = nil
	result := client.Publish(context.Background(), &model.PublishContent{
		Post:       &model.ScheduledPost{ContentType: model.ContentTypeText, Platform: model.PlatformFacebook},
		Credential: cred,
	})

	require.NotNil(t, result.Err)
	assert.Equal(t, model.ErrPlatformAPI, result.Err.Kind)
}

func TestFacebookClient_MediaFetchFailureIsRetryable(t *testing.T) {
	mediaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer mediaServer.Close()

	client := NewClient(mediaServer.Client(), media.NewFetcher(mediaServer.Client()))
	client.SetBaseURL("http://127.0.0.1:0")

	result := client.Publish(context.Background(), &model.PublishContent{
		Post: &model.ScheduledPost{
			Title:       "clip",
			ContentType: model.ContentTypeVideo,
			Platform:    model.PlatformFacebook,
			ContentURL:  mediaServer.URL + "/missing.mp4",
		},
		Credential: pageCredential(),
	})

	require.NotNil(t, result.Err)
	assert.Equal(t, model.ErrMediaFetch, result.Err.Kind)
	assert.False(t, result.Err.Terminal())
}

func TestFacebookClient_GraphErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"Permissions error"}}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), media.NewFetcher(server.Client()))
	client.SetBaseURL(server.URL)

	result := client.Publish(context.Background(), &model.PublishContent{
		Post:       &model.ScheduledPost{Title: "t", ContentType: model.ContentTypeText, Platform: model.PlatformFacebook},
		Credential: pageCredential(),
	})

	require.NotNil(t, result.Err)
	assert.Equal(t, model.ErrPlatformAPI, result.Err.Kind)
	assert.Contains(t, result.Err.Detail, "status 403")
}
