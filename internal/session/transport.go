package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewHTTPClient builds the shared outbound client: request logging always,
// client-side rate limiting when rps > 0.
func NewHTTPClient(timeout time.Duration, rps int, logger *zap.Logger) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if rps > 0 {
		transport = &throttledTransport{
			base:    transport,
			limiter: rate.NewLimiter(rate.Limit(rps), rps),
		}
	}
	transport = &loggingTransport{base: transport, logger: logger}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// loggingTransport logs outgoing requests with latency and request ID metadata.
type loggingTransport struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.logger
	if logger == nil {
		logger = zap.L()
	}

	requestID := req.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	latency := time.Since(start)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("latency", latency),
	}

	if err != nil {
		logger.Warn("api_request_failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields, zap.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode >= 500:
		logger.Error("api_request", fields...)
	case resp.StatusCode >= 400:
		logger.Warn("api_request", fields...)
	default:
		logger.Debug("api_request", fields...)
	}
	return resp, nil
}

// throttledTransport paces outgoing calls; it delays, never rejects, so
// callers see the same error surface with or without it.
type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
