package logger_test

import (
	"bytes"
	"io"
	"testing"

	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.LogLevel
	}{
		{"debug", logger.DebugLevel},
		{"info", logger.InfoLevel},
		{"warning", logger.WarnLevel},
		{"error", logger.ErrorLevel},
		{"", logger.WarnLevel},
		{"bogus", logger.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "warning", true)

	logger.Debug().Msg("hidden debug line")
	logger.Warn().Str("component", "smart").Msg("visible warning")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug line")
	assert.Contains(t, out, "visible warning")
	assert.Contains(t, out, "component=smart")
}

func TestErrorWithCode(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "debug", true)

	err := errors.New().Wrap(errors.ErrCommand, io.EOF)
	logger.ErrorWithCode(err).Msg("smartctl failed")

	out := buf.String()
	assert.Contains(t, out, "smartctl failed")
	assert.Contains(t, out, "error_code=command_failed")
}
