package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindVideoURLRawPatterns(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "video_url key",
			body:     `{"video_url":"https://cdn.example/v.mp4"}`,
			expected: "https://cdn.example/v.mp4",
		},
		{
			name:     "escaped ampersands unescaped",
			body:     `{"video_url":"https://cdn.example/v.mp4?efg=abc\u0026oh=def\u0026dl=1"}`,
			expected: "https://cdn.example/v.mp4?efg=abc&oh=def&dl=1",
		},
		{
			name:     "escaped slashes unescaped",
			body:     `{"video_url":"https:\u002F\u002Fcdn.example\u002Fv.mp4"}`,
			expected: "https://cdn.example/v.mp4",
		},
		{
			name:     "contentUrl key",
			body:     `<script type="application/ld+json">{"contentUrl":"https://cdn.example/ld.mp4"}</script>`,
			expected: "https://cdn.example/ld.mp4",
		},
		{
			name:     "video_versions block",
			body:     `{"video_versions":[{"width":1080,"url":"https://cdn.example/vv.mp4"}]}`,
			expected: "https://cdn.example/vv.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, findVideoURL([]byte(tt.body)))
		})
	}
}

func TestFindVideoURLVideoTag(t *testing.T) {
	body := `<html><body><video><source src="https://cdn.example/tag.mp4"></video></body></html>`
	assert.Equal(t, "https://cdn.example/tag.mp4", findVideoURL([]byte(body)))

	body = `<html><body><video src="https://cdn.example/direct.mp4"></video></body></html>`
	assert.Equal(t, "https://cdn.example/direct.mp4", findVideoURL([]byte(body)))
}

func TestFindVideoURLOgVideoMeta(t *testing.T) {
	body := `<html><head><meta property="og:video" content="https://cdn.example/og.mp4"></head><body></body></html>`
	assert.Equal(t, "https://cdn.example/og.mp4", findVideoURL([]byte(body)))
}

func TestFindVideoURLFirstMatchWins(t *testing.T) {
	body := `<html><body>
		<script>var unrelated = 1;</script>
		<script>window.__data = {"video_url":"https://cdn.example/first.mp4"};</script>
		<script>window.__more = {"video_url":"https://cdn.example/second.mp4"};</script>
	</body></html>`

	assert.Equal(t, "https://cdn.example/first.mp4", findVideoURL([]byte(body)))
}

func TestFindVideoURLLastResortScan(t *testing.T) {
	body := `<html><body><div data-src="https://cdn.example/anywhere.mp4?sig=zz"></div></body></html>`
	assert.Equal(t, "https://cdn.example/anywhere.mp4?sig=zz", findVideoURL([]byte(body)))
}

func TestFindVideoURLNothing(t *testing.T) {
	body := `<html><body><p>just text</p></body></html>`
	assert.Empty(t, findVideoURL([]byte(body)))
}

func TestPageStrategyFetchesPostPage(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"video_url":"https://cdn.example/page.mp4"}`))
	}))
	defer server.Close()

	s := NewPageStrategy(NewClient(nil), server.URL)
	result, err := s.Attempt(context.Background(), Target{Shortcode: "ABC123"}, testIdentity(), "")

	require.NoError(t, err)
	assert.Equal(t, "/reel/ABC123/", gotPath)
	assert.Equal(t, "https://cdn.example/page.mp4", result.URL)
}

func TestPageStrategyPrefersTargetPageURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"video_url":"https://cdn.example/page.mp4"}`))
	}))
	defer server.Close()

	s := NewPageStrategy(NewClient(nil), "https://www.instagram.com")
	target := Target{Shortcode: "ABC123", PageURL: server.URL + "/reel/ABC123/"}
	_, err := s.Attempt(context.Background(), target, testIdentity(), "")

	require.NoError(t, err)
	assert.Equal(t, "/reel/ABC123/", gotPath, "fetches the caller's URL, not a rebuilt one")
}
