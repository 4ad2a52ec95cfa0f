package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spooky-styles/middleware"
	"spooky-styles/models"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testTokens = utils.NewTokenManager("test-secret", time.Hour, "spooky-styles")

func init() {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()
}

// newTestRouter mirrors the production chain that controllers rely on.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.ErrorHandler(),
		middleware.GuestSession(),
		middleware.OptionalAuth(testTokens),
	)
	return r
}

type request struct {
	method  string
	path    string
	body    string
	headers map[string]string
}

func serve(t *testing.T, r *gin.Engine, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	httpReq := httptest.NewRequest(req.method, req.path, body)
	if req.body != "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func bearer(t *testing.T, userID int, role string) map[string]string {
	t.Helper()
	token, err := testTokens.GenerateToken(userID, "user@example.com", role)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

// envelope decodes the common response shape, keeping data raw.
type envelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    json.RawMessage         `json:"data"`
	Meta    *models.MetaData        `json:"meta"`
	Links   *models.PaginationLinks `json:"links"`
	Errors  map[string]string       `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func multipartImage(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func serveMultipart(r *gin.Engine, path string, body *bytes.Buffer, contentType string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
