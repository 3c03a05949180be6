package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"shareit/internal/metrics"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

const headerRequestID = "X-Request-Id"

// requestIDMiddleware attaches an id to each request; an incoming
// X-Request-Id is trusted, otherwise a new one is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID extracts the request id from a context, empty when absent.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("request_id", RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		// r.Pattern заполняется маршрутизатором во время ServeHTTP
		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint, strconv.Itoa(recorder.status))
	})
}

// rateLimitMiddleware enforces a per-caller request budget keyed by the
// X-Sharer-User-Id header. Requests without the header pass through and
// are rejected later by the handlers that need it.
func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.RateLimit.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if !s.ipLimits.allow(r) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		if s.limits == nil {
			next.ServeHTTP(w, r)
			return
		}

		caller, ok := callerID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		window := time.Duration(s.cfg.RateLimit.Window) * time.Second
		allowed, err := s.limits.CheckRateLimit(r.Context(), caller, s.cfg.RateLimit.Requests, window)
		if err != nil {
			// Лимитер не должен ронять запросы при своих сбоях
			s.logger.Error().Err(err).Int64("caller_id", caller).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
