package fetcher

import (
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

// slogLogger routes resty's internal messages to slog at debug level.
// Attempt failures are already reported by logRetry.
type slogLogger struct{}

var _ resty.Logger = slogLogger{}

func (slogLogger) Errorf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "source", "resty")
}

func (slogLogger) Warnf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "source", "resty")
}

func (slogLogger) Debugf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "source", "resty")
}
