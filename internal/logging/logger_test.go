package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetZeroLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := GetZeroLogger("api::handlers", &buf)

	logger.Info().Str(SessionIDKey, "abc").Msg("round settled")

	out := buf.String()
	assert.Contains(t, out, "round settled")
	assert.Contains(t, out, "api::handlers")
	assert.Contains(t, out, "abc")
}

func TestSetDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := GetZeroLogger("test", &buf)

	SetDebug(false)
	logger.Debug().Msg("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetDebug(true)
	defer SetDebug(false)
	logger.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
