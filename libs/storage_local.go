package libs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images below dir and serves them from baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Upload(_ context.Context, file io.Reader, filename, _ string) (*UploadResult, error) {
	name := objectName(filename)
	path := filepath.Join(s.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &UploadResult{URL: s.baseURL + "/" + name, ID: name}, nil
}

func (s *LocalStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(id)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
