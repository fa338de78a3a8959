package common

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type loggingHTTPHandler struct {
	next   http.Handler
	logger *zap.Logger
}

// NewLoggingHTTPHandler wraps next and writes an access log entry for every request.
func NewLoggingHTTPHandler(next http.Handler, logger *zap.Logger) http.Handler {
	return &loggingHTTPHandler{
		next:   next,
		logger: logger,
	}
}

func (h *loggingHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.next.ServeHTTP(rec, r)

	h.logger.Info("handled request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote", r.RemoteAddr),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(startTime)),
	)
}
