package extractor

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"reelgrab/pkg/identity"
)

const graphqlQueryHash = "9f8827793ef34641b2fb195d4d41151c"

// GraphQLStrategy queries the GraphQL-style endpoint with a fixed query
// hash. First in the cascade because a hit returns the media URL directly,
// without any HTML to pick apart.
type GraphQLStrategy struct {
	client  *Client
	baseURL string
	timeout time.Duration
}

// NewGraphQLStrategy creates the GraphQL extraction strategy
func NewGraphQLStrategy(client *Client, baseURL string) *GraphQLStrategy {
	return &GraphQLStrategy{
		client:  client,
		baseURL: baseURL,
		timeout: 15 * time.Second,
	}
}

func (s *GraphQLStrategy) Name() string { return "graphql" }

// Attempt queries the endpoint and looks for the shortcode media's video URL
func (s *GraphQLStrategy) Attempt(ctx context.Context, target Target, ident *identity.Identity, cookieHeader string) (Result, error) {
	variables, err := json.Marshal(map[string]interface{}{
		"shortcode":             target.Shortcode,
		"child_comment_count":   3,
		"fetch_comment_count":   40,
		"parent_comment_count":  24,
		"has_threaded_comments": true,
	})
	if err != nil {
		return Result{}, err
	}

	params := url.Values{}
	params.Set("query_hash", graphqlQueryHash)
	params.Set("variables", string(variables))
	queryURL := s.baseURL + "/graphql/query/?" + params.Encode()

	headers := buildHeaders(ident, cookieHeader, s.baseURL+"/")
	resp, err := s.client.Get(ctx, queryURL, headers, s.timeout)
	if err != nil {
		return cookiesOnly(resp), err
	}

	videoURL := gjson.GetBytes(resp.Body, "data.shortcode_media.video_url").String()
	return Result{URL: videoURL, Cookies: resp.Cookies}, nil
}

// cookiesOnly preserves any cookies a failed request still produced
func cookiesOnly(resp *Response) Result {
	if resp == nil {
		return Result{}
	}
	return Result{Cookies: resp.Cookies}
}
