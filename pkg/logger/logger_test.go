package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "transfers-test", "debug")

	Debug().Str("key", "value").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "transfers-test", entry["app"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "debug", entry["level"])
}

func TestInitInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "transfers-test", "chatty")

	assert.Equal(t, zerolog.InfoLevel, globalLogger.GetLevel())
	assert.Contains(t, buf.String(), "invalid log level")
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "transfers-test", "info")

	assert.Same(t, &globalLogger, Ctx(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, &globalLogger, Ctx(nil))

	child := With().Str("request_id", "abc").Logger()
	ctx := WithLogger(context.Background(), &child)
	Ctx(ctx).Info().Msg("scoped")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}
