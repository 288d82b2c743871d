package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel(" Debug ")
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestConfigureJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	require.NoError(t, configure(&buf, "warn", false))

	log.Info().Msg("hidden")
	log.Warn().Str("room", "r1").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "r1", line["room"])
	require.Equal(t, "shown", line["message"])
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, configure(&buf, "chatty", true))
}
