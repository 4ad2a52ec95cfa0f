package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidateImage checks size, extension and the sniffed content type of an
// uploaded file and returns that content type. The reader is rewound before
// returning.
func ValidateImage(header *multipart.FileHeader, file io.ReadSeeker, maxSize int64) (string, error) {
	if header.Size > maxSize {
		return "", BadRequest(fmt.Sprintf("file too large (max %d bytes)", maxSize))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return "", BadRequest("invalid file type. Only jpg, jpeg, png, gif, webp allowed")
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", Internal("Failed to read upload", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", Internal("Failed to read upload", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", BadRequest("uploaded file is not an image")
	}

	return mtype.String(), nil
}

// SafeFilename strips directories and spaces from a client supplied name.
func SafeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	if len(base) > 100 {
		ext := filepath.Ext(base)
		base = base[:100-len(ext)] + ext
	}
	return base
}
