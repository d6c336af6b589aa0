package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"social-publisher/domain/model"
	"social-publisher/infrastructure/configuration"
	"social-publisher/infrastructure/logger"

	"github.com/google/go-querystring/query"
)

// Refresher calls each platform's token refresh endpoint. Every provider speaks a
// slightly different dialect: parameter names, transport (form POST vs query GET)
// and whether a refresh token or the current access token drives the exchange.
type Refresher struct {
	httpClient *http.Client
	oauth      configuration.OAuth
	endpoints  map[model.Platform]string
}

var defaultEndpoints = map[model.Platform]string{
	model.PlatformYouTube:   "https://oauth2.googleapis.com/token",
	model.PlatformInstagram: "https://graph.instagram.com/refresh_access_token",
	model.PlatformTikTok:    "https://open.tiktokapis.com/v2/oauth/token/",
	model.PlatformFacebook:  "https://graph.facebook.com/v19.0/oauth/access_token",
	model.PlatformTwitter:   "https://api.twitter.com/2/oauth2/token",
	model.PlatformLinkedIn:  "https://www.linkedin.com/oauth/v2/accessToken",
}

func NewRefresher(httpClient *http.Client, oauth configuration.OAuth) *Refresher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	endpoints := make(map[model.Platform]string, len(defaultEndpoints))
	for p, u := range defaultEndpoints {
		endpoints[p] = u
	}
	return &Refresher{httpClient: httpClient, oauth: oauth, endpoints: endpoints}
}

// SetEndpoint overrides a platform's refresh URL. Intended for tests.
func (r *Refresher) SetEndpoint(p model.Platform, url string) { r.endpoints[p] = url }

// Request body shapes, one per provider dialect.

type googleRefreshRequest struct {
	ClientID     string `url:"client_id"`
	ClientSecret string `url:"client_secret"`
	RefreshToken string `url:"refresh_token"`
	GrantType    string `url:"grant_type"`
}

type tiktokRefreshRequest struct {
	ClientKey    string `url:"client_key"`
	ClientSecret string `url:"client_secret"`
	RefreshToken string `url:"refresh_token"`
	GrantType    string `url:"grant_type"`
}

type twitterRefreshRequest struct {
	ClientID     string `url:"client_id"`
	RefreshToken string `url:"refresh_token"`
	GrantType    string `url:"grant_type"`
}

type linkedinRefreshRequest struct {
	ClientID     string `url:"client_id"`
	ClientSecret string `url:"client_secret"`
	RefreshToken string `url:"refresh_token"`
	GrantType    string `url:"grant_type"`
}

type facebookExchangeRequest struct {
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	GrantType       string `url:"grant_type"`
	FBExchangeToken string `url:"fb_exchange_token"`
}

type instagramRefreshRequest struct {
	GrantType   string `url:"grant_type"`
	AccessToken string `url:"access_token"`
}

// tokenResponse covers every provider's response; tiktok nests nothing extra we need.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// Refresh exchanges the credential's token for a fresh one. A non-2xx response or
// an error payload is returned as an error; the caller decides deactivation.
func (r *Refresher) Refresh(ctx context.Context, cred *model.PlatformCredential) (*model.RefreshedToken, error) {
	endpoint, ok := r.endpoints[cred.Platform]
	if !ok {
		return nil, fmt.Errorf("no refresh endpoint for platform %s", cred.Platform)
	}

	var (
		body     interface{}
		viaQuery bool
	)
	switch cred.Platform {
	case model.PlatformYouTube:
		c := r.oauth.YouTube
		body = googleRefreshRequest{ClientID: c.ClientID, ClientSecret: c.ClientSecret, RefreshToken: cred.RefreshToken, GrantType: "refresh_token"}
	case model.PlatformTikTok:
		c := r.oauth.TikTok
		body = tiktokRefreshRequest{ClientKey: c.ClientID, ClientSecret: c.ClientSecret, RefreshToken: cred.RefreshToken, GrantType: "refresh_token"}
	case model.PlatformTwitter:
		c := r.oauth.Twitter
		body = twitterRefreshRequest{ClientID: c.ClientID, RefreshToken: cred.RefreshToken, GrantType: "refresh_token"}
	case model.PlatformLinkedIn:
		c := r.oauth.LinkedIn
		body = linkedinRefreshRequest{ClientID: c.ClientID, ClientSecret: c.ClientSecret, RefreshToken: cred.RefreshToken, GrantType: "refresh_token"}
	case model.PlatformFacebook:
		// Facebook has no refresh token; the current long-lived token is exchanged.
		c := r.oauth.Facebook
		body = facebookExchangeRequest{ClientID: c.ClientID, ClientSecret: c.ClientSecret, GrantType: "fb_exchange_token", FBExchangeToken: cred.AccessToken}
		viaQuery = true
	case model.PlatformInstagram:
		body = instagramRefreshRequest{GrantType: "ig_refresh_token", AccessToken: cred.AccessToken}
		viaQuery = true
	default:
		return nil, fmt.Errorf("unsupported platform %s", cred.Platform)
	}

	values, err := query.Values(body)
	if err != nil {
		return nil, err
	}

	var req *http.Request
	if viaQuery {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+values.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.GetLogger().WithFields(map[string]interface{}{
			"platform": cred.Platform,
			"status":   resp.StatusCode,
		}).Warn("Token refresh rejected by provider")
		return nil, fmt.Errorf("refresh rejected: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("refresh response malformed: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("refresh rejected: %s: %s", tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("refresh response missing access_token")
	}

	out := &model.RefreshedToken{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}
	if tr.ExpiresIn > 0 {
		t := time.Now().UTC().Add(time.Duration(tr.ExpiresIn) * time.Second)
		out.ExpiresAt = &t
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
