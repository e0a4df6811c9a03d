package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"reelgrab/pkg/config"
)

// UploadResult carries the remote location of an uploaded video
type UploadResult struct {
	SecureURL string
	PublicID  string
}

// Uploader pushes a locally saved file to remote storage. Upload failure is
// never fatal to the pipeline; callers keep the local copy instead.
type Uploader interface {
	UploadVideo(ctx context.Context, localPath, publicID string) (*UploadResult, error)
}

// CloudinaryUploader uploads videos to Cloudinary
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader creates an uploader from credentials. Returns a
// disabled uploader when credentials are missing, so the service still runs
// with local-only storage.
func NewCloudinaryUploader(cfg *config.CloudinaryConfig) (Uploader, error) {
	if !cfg.Configured() {
		return &disabledUploader{}, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryUploader{cld: cld, folder: cfg.Folder}, nil
}

// UploadVideo uploads the file at localPath as a video asset
func (u *CloudinaryUploader) UploadVideo(ctx context.Context, localPath, publicID string) (*UploadResult, error) {
	resp, err := u.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       u.folder,
		ResourceType: "video",
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}

	return &UploadResult{
		SecureURL: resp.SecureURL,
		PublicID:  resp.PublicID,
	}, nil
}

// disabledUploader is used when no credentials are configured
type disabledUploader struct{}

func (d *disabledUploader) UploadVideo(ctx context.Context, localPath, publicID string) (*UploadResult, error) {
	return nil, fmt.Errorf("Cloudinary not configured")
}
