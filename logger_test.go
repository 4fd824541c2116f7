package pktsim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn, "test ")

	logger.Debugf("debug %d", 1)
	logger.Infof("info %d", 2)
	logger.Warnf("warn %d", 3)
	logger.Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")

	buf.Reset()
	logger.SetLevel(LogLevelDebug)
	logger.Debugf("debug %d", 5)
	assert.Contains(t, buf.String(), "debug 5")
}

func TestNilLoggerDiscards(t *testing.T) {
	var logger *Logger
	logger.SetLevel(LogLevelDebug)
	logger.Errorf("nowhere")
}

func TestParseLogLevel(t *testing.T) {
	for name, level := range map[string]LogLevel{
		"error": LogLevelError, "WARN": LogLevelWarn, "warning": LogLevelWarn,
		"": LogLevelInfo, "info": LogLevelInfo, "debug": LogLevelDebug,
	} {
		parsed, err := ParseLogLevel(name)
		require.NoError(t, err)
		assert.Equal(t, level, parsed, name)
	}

	_, err := ParseLogLevel("chatty")
	assert.Error(t, err)
}
