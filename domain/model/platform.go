package model

import "strings"

// Platform identifies one of the supported social networks.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
)

// AllPlatforms lists every supported platform in a stable order.
var AllPlatforms = []Platform{
	PlatformYouTube,
	PlatformInstagram,
	PlatformTikTok,
	PlatformFacebook,
	PlatformTwitter,
	PlatformLinkedIn,
}

// requiredScopes maps each platform to the OAuth scopes a credential must carry
// before a publish is attempted on it.
var requiredScopes = map[Platform][]string{
	PlatformYouTube:   {"https://www.googleapis.com/auth/youtube.upload"},
	PlatformInstagram: {"instagram_basic", "instagram_content_publish"},
	PlatformTikTok:    {"video.publish"},
	PlatformFacebook:  {"pages_manage_posts"},
	PlatformTwitter:   {"tweet.write"},
	PlatformLinkedIn:  {"w_member_social"},
}

// ParsePlatform normalizes a user-supplied platform name.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// RequiredScopes returns the publishing scopes the platform demands.
func (p Platform) RequiredScopes() []string {
	return requiredScopes[p]
}

func (p Platform) String() string { return string(p) }
