package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/identity"
)

// mediaInfoResponse mirrors the private REST endpoint's media info payload
type mediaInfoResponse struct {
	Items []mediaItem `json:"items"`
}

type mediaItem struct {
	VideoVersions []videoVersion `json:"video_versions"`
}

type videoVersion struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// RESTStrategy hits the private media info endpoint. When it answers, the
// payload lists the same video at several encodes; the widest one is the
// canonical highest-quality pick.
type RESTStrategy struct {
	client  *Client
	baseURL string
	timeout time.Duration
}

// NewRESTStrategy creates the private REST extraction strategy
func NewRESTStrategy(client *Client, baseURL string) *RESTStrategy {
	return &RESTStrategy{
		client:  client,
		baseURL: baseURL,
		timeout: 10 * time.Second,
	}
}

func (s *RESTStrategy) Name() string { return "rest_api" }

// Attempt fetches media info and selects the widest video version
func (s *RESTStrategy) Attempt(ctx context.Context, target Target, ident *identity.Identity, cookieHeader string) (Result, error) {
	apiURL := fmt.Sprintf("%s/api/v1/media/%s/info/", s.baseURL, target.Shortcode)

	headers := buildHeaders(ident, cookieHeader, s.baseURL+"/")
	resp, err := s.client.Get(ctx, apiURL, headers, s.timeout)
	if err != nil {
		return cookiesOnly(resp), err
	}

	var info mediaInfoResponse
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return cookiesOnly(resp), errors.Newf(errors.ErrorTypeParsing, "failed to parse media info: %v", err)
	}

	if len(info.Items) == 0 || len(info.Items[0].VideoVersions) == 0 {
		return Result{Cookies: resp.Cookies}, nil
	}

	best := info.Items[0].VideoVersions[0]
	for _, v := range info.Items[0].VideoVersions[1:] {
		// Strictly greater, so the first occurrence wins a width tie
		if v.Width > best.Width {
			best = v
		}
	}

	return Result{URL: best.URL, Cookies: resp.Cookies}, nil
}
