package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"spooky-styles/utils"

	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func requireKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected *utils.AppError, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, appErr.Message)
}

// newFileHeader builds a real multipart.FileHeader the way gin hands one to
// a handler.
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, header, err := req.FormFile("image")
	require.NoError(t, err)
	return header
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
