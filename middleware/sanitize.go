package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"strings"

	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// MaxJSONBodyBytes caps JSON request bodies. Uploads are multipart and not
// affected.
const MaxJSONBodyBytes = 1 << 20

// fields whose values must reach handlers untouched
var rawFields = map[string]bool{
	"password":     true,
	"old_password": true,
	"new_password": true,
	"stack":        true,
}

// SanitizeBody strips HTML from every string in JSON request bodies.
// Requests whose path starts with one of skipPrefixes (webhooks, which are
// signature checked over the raw bytes) pass through unchanged.
func SanitizeBody(skipPrefixes ...string) gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if !hasBody(c.Request.Method) || !strings.HasPrefix(c.ContentType(), "application/json") {
			c.Next()
			return
		}
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxJSONBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				abortWithError(c, utils.PayloadTooLarge("Request body too large"))
				return
			}
			abortWithError(c, utils.BadRequest("Failed to read request body"))
			return
		}
		_ = c.Request.Body.Close()

		var payload any
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if len(bytes.TrimSpace(body)) == 0 || dec.Decode(&payload) != nil {
			// leave malformed bodies for binding to report
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}

		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(sanitizeValue(policy, "", payload)); err != nil {
			abortWithError(c, utils.Internal("Failed to process request body", err))
			return
		}
		cleaned := bytes.TrimRight(buf.Bytes(), "\n")
		c.Request.Body = io.NopCloser(bytes.NewReader(cleaned))
		c.Request.ContentLength = int64(len(cleaned))
		c.Next()
	}
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func sanitizeValue(policy *bluemonday.Policy, key string, v any) any {
	switch val := v.(type) {
	case string:
		if rawFields[key] {
			return val
		}
		return sanitizeString(policy, val)
	case map[string]any:
		for k, inner := range val {
			val[k] = sanitizeValue(policy, k, inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = sanitizeValue(policy, key, inner)
		}
		return val
	default:
		return v
	}
}

// maxSanitizePasses bounds the decode/strip loop for deeply encoded input.
const maxSanitizePasses = 5

// sanitizeString removes markup but keeps plain text readable: "Rock & Roll"
// stays as is instead of becoming "Rock &amp; Roll". Each pass strips tags and
// decodes one layer of entities, so markup hidden behind several layers of
// encoding is stripped once it surfaces. The result is a fixed point: another
// pass would not change it.
func sanitizeString(policy *bluemonday.Policy, s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	for range maxSanitizePasses {
		next := html.UnescapeString(policy.Sanitize(s))
		if next == s {
			return s
		}
		s = next
	}
	// still changing: keep the escaped form, which is inert
	return policy.Sanitize(s)
}
