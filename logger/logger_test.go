package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_NotNil(t *testing.T) {
	require.NotNil(t, NewLogger("server", false))
	require.NotNil(t, NewLogger("server", true))
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() { l.Info().Msg("ignored") })
}

func TestGetChildLogger_IsIndependent(t *testing.T) {
	parent := NewLogger("server", false)
	child := parent.GetChildLogger()
	assert.NotSame(t, parent, child)
}

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("request_id", "abc").Logger()
	ctx := zl.WithContext(context.Background())

	FromContext(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
