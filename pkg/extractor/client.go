package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/logger"
)

// Client performs outbound requests for the extraction strategies. Each
// request carries per-identity headers and a per-strategy timeout; Set-Cookie
// response headers are captured and handed back to the caller rather than
// stored here.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// Response is the portion of an upstream response a strategy needs
type Response struct {
	StatusCode int
	Body       []byte
	Cookies    []string
}

// NewClient creates an extraction HTTP client
func NewClient(log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{
		// Per-request deadlines come from the strategy's context
		httpClient: &http.Client{},
		logger:     log,
	}
}

// Get performs a GET with the given headers and timeout and reads the full
// body. Non-2xx statuses are returned as typed errors, with the response's
// cookies still surfaced so anti-bot cookies issued alongside a rejection
// are not lost.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Newf(errors.ErrorTypeTimeout, "request timeout after %s: %v", timeout, err)
		}
		return nil, errors.Newf(errors.ErrorTypeNetwork, "network error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to read response body: %v", err)
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Cookies:    resp.Header.Values("Set-Cookie"),
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"bytes":    len(body),
		"duration": duration,
	})

	if err := statusError(resp.StatusCode); err != nil {
		return result, err
	}
	return result, nil
}

// statusError maps a non-success HTTP status to a typed error
func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		return &errors.Error{Type: errors.ErrorTypeBlocked, Message: fmt.Sprintf("server returned status %d", code), Code: code}
	case code == http.StatusNotFound:
		return &errors.Error{Type: errors.ErrorTypeNotFound, Message: "resource not found", Code: code}
	case code == http.StatusTooManyRequests:
		return &errors.Error{Type: errors.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: code}
	case code >= 500:
		return &errors.Error{Type: errors.ErrorTypeServerError, Message: fmt.Sprintf("server returned status %d", code), Code: code}
	default:
		return &errors.Error{Type: errors.ErrorTypeUnknown, Message: fmt.Sprintf("unexpected status code %d", code), Code: code}
	}
}
