package extractor

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reelgrab/pkg/identity"
)

// Raw-text patterns tried against the page body, in order. They target the
// JSON fragments the page inlines (video_url, contentUrl, video_versions)
// before any structured parsing is attempted.
var pageVideoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"video_url":"([^"]+)"`),
	regexp.MustCompile(`"video_url":"([^"]*\\u0026[^"]*)"`),
	regexp.MustCompile(`"contentUrl":"([^"]*\.mp4[^"]*)"`),
	regexp.MustCompile(`"contentUrl":"([^"]*video[^"]*)"`),
	regexp.MustCompile(`"url":"([^"]*\.mp4[^"]*)"`),
	regexp.MustCompile(`"url":"([^"]*video[^"]*)"`),
	regexp.MustCompile(`video_url":"([^"]+)"`),
	regexp.MustCompile(`video_url":"([^"]*\\u0026[^"]*)"`),
	regexp.MustCompile(`"video_versions":\[[^\]]*"url":"([^"]+)"`),
	regexp.MustCompile(`"video_versions":\[[^\]]*"url":"([^"]*\\u0026[^"]*)"`),
}

var (
	scriptVideoPattern = regexp.MustCompile(`"video_url":"([^"]+)"`)
	anyMP4Pattern      = regexp.MustCompile(`https://[^"]*\.mp4[^"]*`)
)

// PageStrategy fetches the public post page and applies layered parsing to
// its single response body: raw patterns, then structured HTML, then inline
// scripts, then a last-resort scan for any mp4 URL. Last in the cascade
// because it is the most markup-sensitive surface.
type PageStrategy struct {
	client  *Client
	timeout time.Duration
	referer string
}

// NewPageStrategy creates the public page scrape strategy
func NewPageStrategy(client *Client, baseURL string) *PageStrategy {
	return &PageStrategy{
		client:  client,
		timeout: 15 * time.Second,
		referer: baseURL + "/",
	}
}

func (s *PageStrategy) Name() string { return "page_scrape" }

// Attempt fetches the normalized post page and parses its body in layers
func (s *PageStrategy) Attempt(ctx context.Context, target Target, ident *identity.Identity, cookieHeader string) (Result, error) {
	postURL := target.PageURL
	if postURL == "" {
		postURL = s.referer + "reel/" + target.Shortcode + "/"
	}

	headers := buildHeaders(ident, cookieHeader, s.referer)
	resp, err := s.client.Get(ctx, postURL, headers, s.timeout)
	if err != nil {
		return cookiesOnly(resp), err
	}

	if url := findVideoURL(resp.Body); url != "" {
		return Result{URL: url, Cookies: resp.Cookies}, nil
	}
	return Result{Cookies: resp.Cookies}, nil
}

// findVideoURL runs the layered parse over a page body. Each sub-step runs
// only if the previous one yielded nothing; the first hit wins.
func findVideoURL(body []byte) string {
	// (a) raw-text patterns
	for _, pattern := range pageVideoPatterns {
		if match := pattern.FindSubmatch(body); match != nil {
			return unescapeVideoURL(string(match[1]))
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		// (b) video element, then og:video meta tag
		if src, ok := doc.Find("video source").Attr("src"); ok && src != "" {
			return src
		}
		if src, ok := doc.Find("video").Attr("src"); ok && src != "" {
			return src
		}
		if content, ok := doc.Find(`meta[property="og:video"]`).Attr("content"); ok && content != "" {
			return content
		}

		// (c) inline scripts, first match wins
		var scriptURL string
		doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
			text := sel.Text()
			if !strings.Contains(text, "video_url") {
				return true
			}
			if match := scriptVideoPattern.FindStringSubmatch(text); match != nil {
				scriptURL = unescapeVideoURL(match[1])
				return false
			}
			return true
		})
		if scriptURL != "" {
			return scriptURL
		}
	}

	// (d) last resort: any mp4 URL anywhere in the body
	if match := anyMP4Pattern.Find(body); match != nil {
		return string(match)
	}

	return ""
}

// unescapeVideoURL reverses the JSON escape sequences the page inlines
func unescapeVideoURL(url string) string {
	url = strings.ReplaceAll(url, `\u0026`, "&")
	url = strings.ReplaceAll(url, `\u002F`, "/")
	return url
}
