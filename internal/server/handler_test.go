package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgrab/pkg/config"
	"reelgrab/pkg/download"
	"reelgrab/pkg/errors"
	"reelgrab/pkg/extractor"
)

type stubResolver struct {
	url string
	err error
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (string, error) {
	return s.url, s.err
}

type stubFetcher struct {
	outcome  *download.Outcome
	err      error
	gotURL   string
	filename string
}

func (s *stubFetcher) Fetch(_ context.Context, mediaURL, filename string) (*download.Outcome, error) {
	s.gotURL = mediaURL
	s.filename = filename
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func newTestServer(t *testing.T, resolver Resolver, fetcher Fetcher) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Download.Directory = t.TempDir()
	return New(cfg, resolver, fetcher, nil)
}

func post(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDownloadRejectsNonInstagramURL(t *testing.T) {
	srv := newTestServer(t, &stubResolver{}, &stubFetcher{})

	rec := post(t, srv, `{"url": "https://example.com/watch?v=abc"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Please provide a valid Instagram URL", resp.Error)
}

func TestDownloadRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t, &stubResolver{}, &stubFetcher{})

	rec := post(t, srv, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadExhaustedReturns404WithSuggestions(t *testing.T) {
	srv := newTestServer(t, &stubResolver{err: extractor.ErrExhausted}, &stubFetcher{})

	rec := post(t, srv, `{"url": "https://www.instagram.com/reel/ABC123/"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "after multiple attempts")
	assert.Equal(t, []string{
		"Try with a different Instagram reel",
		"Make sure the post is public",
		"Wait a few minutes and try again",
		"Check if the URL is correct",
		"Instagram may be blocking automated requests",
		"Try using a different network or VPN",
	}, resp.Suggestions)
}

func TestDownloadHardFailureReturnsClassifiedError(t *testing.T) {
	resolver := &stubResolver{
		err: errors.New(errors.ErrorTypeBlocked, "request blocked with status 403"),
	}
	srv := newTestServer(t, resolver, &stubFetcher{})

	rec := post(t, srv, `{"url": "https://www.instagram.com/reel/ABC123/"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Access denied")
	assert.NotEmpty(t, resp.Details)
}

func TestDownloadFetchFailureReturns500(t *testing.T) {
	fetcher := &stubFetcher{
		err: errors.New(errors.ErrorTypeTimeout, "download timeout after 60s"),
	}
	srv := newTestServer(t, &stubResolver{url: "https://cdn.example.com/v.mp4"}, fetcher)

	rec := post(t, srv, `{"url": "https://www.instagram.com/reel/ABC123/"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Request timeout")
}

func TestDownloadUploadedResponseShape(t *testing.T) {
	fetcher := &stubFetcher{
		outcome: &download.Outcome{
			SecureURL: "https://res.cloudinary.com/demo/video/v1/reel.mp4",
			PublicID:  "instagram-reels/instagram_reel_1",
		},
	}
	srv := newTestServer(t, &stubResolver{url: "https://cdn.example.com/v.mp4"}, fetcher)

	rec := post(t, srv, `{"url": "https://www.instagram.com/reel/ABC123/"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp downloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Video downloaded and uploaded to cloud successfully", resp.Message)
	assert.Equal(t, fetcher.outcome.SecureURL, resp.DownloadURL)
	assert.Equal(t, fetcher.outcome.SecureURL, resp.CloudinaryURL)
	assert.Equal(t, fetcher.outcome.PublicID, resp.CloudinaryID)
	assert.Empty(t, resp.FilePath)
	assert.Equal(t, "https://cdn.example.com/v.mp4", fetcher.gotURL)
	assert.Regexp(t, `^instagram_reel_\d+\.mp4$`, resp.Filename)
}

func TestDownloadLocalFallbackResponseShape(t *testing.T) {
	fetcher := &stubFetcher{
		outcome: &download.Outcome{
			LocalPath:   "/srv/downloads/instagram_reel_1.mp4",
			UploadError: "quota exceeded",
		},
	}
	srv := newTestServer(t, &stubResolver{url: "https://cdn.example.com/v.mp4"}, fetcher)

	rec := post(t, srv, `{"url": "https://www.instagram.com/reel/ABC123/"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp downloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Video downloaded locally (cloud upload failed)", resp.Message)
	assert.Equal(t, "/downloads/"+resp.Filename, resp.DownloadURL)
	assert.Equal(t, fetcher.outcome.LocalPath, resp.FilePath)
	assert.Equal(t, "quota exceeded", resp.UploadError)
	assert.Empty(t, resp.CloudinaryURL)
}
