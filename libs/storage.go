package libs

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"spooky-styles/config"
)

type UploadResult struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, id string) error
}

// NewImageStore picks the backend named by UPLOAD_DRIVER.
func NewImageStore(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.Upload.Driver {
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "local", "":
		return NewLocalStore(cfg.Upload.Dir, cfg.App.BaseURL+"/uploads")
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Upload.Driver)
	}
}

// objectName builds a unique, URL safe name that keeps the original extension.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, base)
	if len(base) > 60 {
		base = base[:60]
	}
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)
}
