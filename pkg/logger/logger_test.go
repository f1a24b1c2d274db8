package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNew_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "williammetal-api", Output: &buf})

	l.Debug().Msg("oculto")
	l.Component("http").Info().Str("path", "/api/sales").Msg("petición")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	assert.Equal(t, "williammetal-api", line["service"])
	assert.Equal(t, "http", line["component"])
	assert.Equal(t, "/api/sales", line["path"])
	assert.Equal(t, "info", line["level"])
}
