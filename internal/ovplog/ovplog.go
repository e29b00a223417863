// Package ovplog builds the structured logger used for startup and
// per-request operational logging. Testcase content never flows through
// this logger; that data only ever reaches the client via the Report
// Store and JUnit rendering.
package ovplog

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console-formatted zerolog.Logger writing to w, with a
// timestamp on every event.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
