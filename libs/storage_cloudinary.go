package libs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"spooky-styles/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore accepts either CLOUDINARY_URL or the separate
// cloud name, key and secret variables.
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)

	switch {
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld, folder: cfg.Folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename, _ string) (*UploadResult, error) {
	name := objectName(filename)
	publicID := strings.TrimSuffix(name, filepath.Ext(name))

	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         s.folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}

	url := res.SecureURL
	if url == "" {
		url = res.URL
	}
	if url == "" {
		return nil, errors.New("cloudinary returned no URL")
	}

	return &UploadResult{URL: url, ID: res.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary deletion failed: %s", res.Result)
	}
	return nil
}
