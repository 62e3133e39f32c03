package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	svc := Component(log, "service")
	svc.Info().Str("key", "value").Msg("hello")
	log.Debug().Msg("filtered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "service", entry["component"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "hello", entry["message"])
	assert.NotEmpty(t, entry["ts"])
}

func TestNew_TimestampsUseEachLoggersZone(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)

	var local, utc bytes.Buffer
	localLog := New(Config{Output: &local, Location: istanbul})
	utcLog := New(Config{Output: &utc})

	localLog.Info().Msg("a")
	utcLog.Info().Msg("b")

	ts := func(buf *bytes.Buffer) string {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		s, _ := entry["ts"].(string)
		return s
	}
	assert.True(t, strings.HasSuffix(ts(&local), "+03:00"), ts(&local))
	assert.True(t, strings.HasSuffix(ts(&utc), "Z"), ts(&utc))
	assert.Equal(t, "ts", zerolog.TimestampFieldName)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
		{"disabled", zerolog.Disabled},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
