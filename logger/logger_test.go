package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		LOG_LEVEL_DEBUG: zerolog.DebugLevel,
		LOG_LEVEL_INFO:  zerolog.InfoLevel,
		LOG_LEVEL_WARN:  zerolog.WarnLevel,
		LOG_LEVEL_ERROR: zerolog.ErrorLevel,
		LOG_LEVEL_FATAL: zerolog.FatalLevel,
		LOG_LEVEL_PANIC: zerolog.PanicLevel,
		"verbose":       zerolog.InfoLevel,
	}
	for name, want := range cases {
		require.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNewLoggerTo(t *testing.T) {
	t.Setenv(LogLevelEnv, LOG_LEVEL_WARN)
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "Test")

	log.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "Test", line["component"])
	require.Equal(t, "kept", line["message"])
}
