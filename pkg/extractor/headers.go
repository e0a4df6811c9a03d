package extractor

import (
	"fmt"

	"reelgrab/pkg/identity"
)

// Fixed application identifiers the upstream expects on private-surface
// requests. Omitting them changes what the server is willing to return.
const (
	igAppID   = "936619743392459"
	asbdID    = "129477"
	ajaxToken = "1006632969"
)

// buildHeaders assembles the outbound header set for an identity. Every
// value is derived from the persona so the fingerprint stays internally
// consistent across the whole resolution pass.
func buildHeaders(ident *identity.Identity, cookieHeader, referer string) map[string]string {
	fp := ident.Fingerprint

	chPlatform := `"Windows"`
	if fp.Platform != "Win32" {
		chPlatform = `"macOS"`
	}

	headers := map[string]string{
		"User-Agent":                ident.UserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"Accept-Language":           fp.Language,
		"Accept-Encoding":           "gzip, deflate, br",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "same-origin",
		"Sec-Fetch-User":            "?1",
		"Cache-Control":             "max-age=0",
		"Referer":                   referer,
		"DNT":                       "1",
		"X-IG-App-ID":               igAppID,
		"X-IG-WWW-Claim":            "0",
		"X-ASBD-ID":                 asbdID,
		"X-Requested-With":          "XMLHttpRequest",
		"X-Instagram-AJAX":          ajaxToken,
		"X-CSRFToken":               "missing",
		"sec-ch-ua":                 `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
		"sec-ch-ua-mobile":          "?0",
		"sec-ch-ua-platform":        chPlatform,
		"Viewport-Width":            fmt.Sprintf("%d", fp.ScreenWidth),
		"Device-Memory":             fmt.Sprintf("%d", fp.DeviceMemory),
	}

	if cookieHeader != "" {
		headers["Cookie"] = cookieHeader
	}

	return headers
}
