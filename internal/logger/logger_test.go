package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.WarnLevel)

	log.Info().Msg("hidden")
	log.Warn().Str("file", "extrato.csv").Msg("row skipped")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "row skipped")
	assert.Contains(t, out, "file=extrato.csv")
	assert.NotContains(t, out, "\x1b[", "no color codes for non-terminal writers")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, zerolog.DebugLevel)
	log.Debug().Int("rows", 3).Msg("parsed")
	assert.Contains(t, buf.String(), `"rows":3`)
	assert.Contains(t, buf.String(), `"level":"debug"`)
}

func TestParseLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")

	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	t.Setenv(EnvLevel, "error")
	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.ErrorLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), NewJSON(&buf, zerolog.InfoLevel))

	log := FromContext(ctx)
	log.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	nop := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, nop.GetLevel())
}
