package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ayusman/flexit/internal/metrics"
)

// requestMetrics counts requests by method and response status.
func requestMetrics(m *metrics.Manager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
		resp := &responseWriter{respWriter, http.StatusOK}

		next.ServeHTTP(resp, req)

		m.CounterRequests.With(
			prometheus.Labels{
				"method": req.Method,
				"status": strconv.Itoa(resp.statusCode),
			},
		).Inc()
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}

// Hijack lets WebSocket upgrades through the wrapper.
func (r *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *responseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
