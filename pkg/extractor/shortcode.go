package extractor

import (
	"regexp"
	"strings"

	"reelgrab/pkg/errors"
)

var shortcodePattern = regexp.MustCompile(`/reel/([^/]+)`)

// NormalizeURL strips the query string from a post URL
func NormalizeURL(postURL string) string {
	clean, _, _ := strings.Cut(postURL, "?")
	return clean
}

// DeriveShortcode extracts the post's shortcode from its URL path. The
// derivation is a pure function of the URL; a URL without a /reel/ segment
// is a terminal input error, raised before any network call is made.
func DeriveShortcode(postURL string) (string, error) {
	match := shortcodePattern.FindStringSubmatch(NormalizeURL(postURL))
	if match == nil {
		return "", errors.New(errors.ErrorTypeInput, "could not extract shortcode from Instagram URL")
	}
	return match[1], nil
}
