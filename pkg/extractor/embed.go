package extractor

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"reelgrab/pkg/identity"
)

var embedVideoPattern = regexp.MustCompile(`src="([^"]*\.mp4[^"]*)"`)

// EmbedStrategy scrapes the mobile embed page, a lighter surface than the
// full post page that often renders the video element directly.
type EmbedStrategy struct {
	client  *Client
	baseURL string
	timeout time.Duration
}

// NewEmbedStrategy creates the mobile embed extraction strategy
func NewEmbedStrategy(client *Client, baseURL string) *EmbedStrategy {
	return &EmbedStrategy{
		client:  client,
		baseURL: baseURL,
		timeout: 10 * time.Second,
	}
}

func (s *EmbedStrategy) Name() string { return "mobile_embed" }

// Attempt fetches the embed page and looks for an mp4 src attribute
func (s *EmbedStrategy) Attempt(ctx context.Context, target Target, ident *identity.Identity, cookieHeader string) (Result, error) {
	embedURL := fmt.Sprintf("%s/p/%s/embed/", s.baseURL, target.Shortcode)

	headers := buildHeaders(ident, cookieHeader, s.baseURL+"/")
	// The embed page is navigated to as a document, not fetched as an API
	headers["Accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	resp, err := s.client.Get(ctx, embedURL, headers, s.timeout)
	if err != nil {
		return cookiesOnly(resp), err
	}

	match := embedVideoPattern.FindSubmatch(resp.Body)
	if match == nil {
		return Result{Cookies: resp.Cookies}, nil
	}

	return Result{URL: string(match[1]), Cookies: resp.Cookies}, nil
}
