package httpmiddleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Logger creates a logging middleware for http.RoundTripper. Every request
// gets a trace id so a request and its response line up in the log file.
// Bodies are never logged; the panel sends credentials in them.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			traceID := uuid.New().String()

			logger.Debug("HTTP request",
				slog.String("trace_id", traceID),
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()))

			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration := time.Since(start)

			if err != nil {
				logger.Error("HTTP request failed",
					slog.String("trace_id", traceID),
					slog.String("method", req.Method),
					slog.String("url", req.URL.String()),
					slog.Duration("duration", duration),
					slog.Any("error", err))

				return resp, err
			}

			level := slog.LevelDebug
			if resp.StatusCode >= 400 {
				level = slog.LevelWarn
			}
			if resp.StatusCode >= 500 {
				level = slog.LevelError
			}

			logger.LogAttrs(req.Context(), level, "HTTP response",
				slog.String("trace_id", traceID),
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Int("status", resp.StatusCode),
				slog.Duration("duration", duration))

			return resp, nil
		})
	}
}
