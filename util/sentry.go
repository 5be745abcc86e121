package util

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

// InitSentry enables error reporting. An empty DSN leaves it disabled.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

// FlushSentry waits for buffered events to be sent.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// ReportError logs err and forwards it to Sentry when a client is configured.
func ReportError(err error, msg string) {
	if err == nil {
		return
	}
	log.Error().Err(err).Msg(msg)
	if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
}
