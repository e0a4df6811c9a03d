package download

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/identity"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/storage"
)

// Outcome describes where the fetched media ended up. The call is a success
// as soon as bytes are on disk; the remote upload is best effort, and its
// failure is recorded here rather than raised.
type Outcome struct {
	LocalPath   string
	SecureURL   string
	PublicID    string
	UploadError string
}

// Uploaded reports whether the media reached remote storage
func (o *Outcome) Uploaded() bool {
	return o.SecureURL != ""
}

// Fetcher streams a resolved media URL to local storage and relays it to
// the remote uploader
type Fetcher struct {
	pool     *identity.Pool
	store    *storage.Manager
	uploader storage.Uploader
	client   *http.Client
	timeout  time.Duration
	logger   logger.Logger
}

// NewFetcher creates a media fetcher
func NewFetcher(pool *identity.Pool, store *storage.Manager, uploader storage.Uploader, timeout time.Duration, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		pool:     pool,
		store:    store,
		uploader: uploader,
		client:   &http.Client{},
		timeout:  timeout,
		logger:   log,
	}
}

// Filename generates the canonical name for a persisted reel
func Filename() string {
	return fmt.Sprintf("instagram_reel_%d.mp4", time.Now().UnixMilli())
}

// Fetch streams the media at mediaURL into local storage under filename and
// hands the file to the uploader. A fresh identity is minted just for this
// transfer; the extraction identity is never reused here.
func (f *Fetcher) Fetch(ctx context.Context, mediaURL, filename string) (*Outcome, error) {
	// Extraction sometimes yields URLs with leftover JSON escaping
	cleanURL := strings.ReplaceAll(mediaURL, `\`, "")

	ident := f.pool.Create()
	log := f.logger.WithFields(map[string]interface{}{
		"session":  ident.ID,
		"filename": filename,
	})

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cleanURL, nil)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeInput, "invalid media URL: %v", err)
	}
	for key, value := range transferHeaders(ident) {
		req.Header.Set(key, value)
	}

	log.Debug("starting media transfer")
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Newf(errors.ErrorTypeTimeout, "media transfer timeout: %v", err)
		}
		return nil, errors.Newf(errors.ErrorTypeNetwork, "media transfer failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "media server returned status %d", resp.StatusCode)
	}

	localPath, err := f.store.Save(resp.Body, filename)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to persist media: %v", err)
	}
	log.InfoWithFields("media saved locally", map[string]interface{}{"path": localPath})

	return f.relay(ctx, localPath, filename, log), nil
}

// relay hands the saved file to remote storage. On success the local copy
// is dropped; on failure it is kept and the outcome still counts as a
// success with the upload error recorded.
func (f *Fetcher) relay(ctx context.Context, localPath, filename string, log logger.Logger) *Outcome {
	publicID := strings.TrimSuffix(filename, ".mp4")

	result, err := f.uploader.UploadVideo(ctx, localPath, publicID)
	if err != nil {
		log.WarnWithFields("remote upload failed, keeping local copy", map[string]interface{}{
			"error": err.Error(),
		})
		return &Outcome{
			LocalPath:   localPath,
			UploadError: err.Error(),
		}
	}

	log.InfoWithFields("media uploaded to remote storage", map[string]interface{}{
		"secure_url": result.SecureURL,
	})

	if err := f.store.Remove(filename); err != nil {
		log.WarnWithFields("failed to clean up local copy", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &Outcome{
		SecureURL: result.SecureURL,
		PublicID:  result.PublicID,
	}
}

// transferHeaders builds the header set for the byte transfer itself. The
// persona is presented the same way as during extraction, but the fetch is
// cross-site the way a browser pulls CDN media.
func transferHeaders(ident *identity.Identity) map[string]string {
	return map[string]string{
		"User-Agent":      ident.UserAgent,
		"Accept":          "video/webm,video/ogg,video/*;q=0.9,application/ogg;q=0.7,audio/*;q=0.6,*/*;q=0.5",
		"Accept-Language": ident.Fingerprint.Language,
		"Accept-Encoding": "gzip, deflate, br",
		"Connection":      "keep-alive",
		"Sec-Fetch-Dest":  "video",
		"Sec-Fetch-Mode":  "no-cors",
		"Sec-Fetch-Site":  "cross-site",
		"Referer":         "https://www.instagram.com/",
		"Origin":          "https://www.instagram.com",
		"Range":           "bytes=0-",
	}
}
