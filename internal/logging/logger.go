package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	SessionIDKey string = "sessionID"
	RoundKey     string = "round"
)

// GetZeroLogger returns a console logger tagged with name. A nil out logs
// to stdout.
func GetZeroLogger(name string, out io.Writer) *zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Str("logger", name).Logger()
	return &logger
}

// SetDebug switches the global level between debug and info
func SetDebug(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
