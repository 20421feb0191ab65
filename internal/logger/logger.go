package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/clientpack/internal/http"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

type Requests struct {
	logger zerolog.Logger
}

func NewRequests(logger zerolog.Logger) *Requests {
	return &Requests{logger: logger}
}

// Wrap logs every request served by next.
func (c *Requests) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		ctx := c.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("addr", httpmiddleware.ClientAddr(r)).
			Logger().WithContext(r.Context())

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status >= http.StatusInternalServerError {
			zerolog.Ctx(ctx).Error().
				Int("status", rec.status).
				Dur("duration", time.Since(started)).
				Msg("http request")
			return
		}

		zerolog.Ctx(ctx).Info().
			Int("status", rec.status).
			Dur("duration", time.Since(started)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
