package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/constants"
)

type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int

	// Paths under this prefix get a JSON body on recovered panics.
	APIPrefix string
	Repanic   bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  true,
		LogResponseBody: false,
		MaxBodyLength:   512,
		APIPrefix:       "/api/",
	}
}

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	body          *bytes.Buffer
	limit         int
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	if room := w.limit - w.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	w.statusWritten = true
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if v := r.Header.Get(conf.RealIPHeader); v != "" {
		return v
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if v := r.Header.Get(conf.RequestIDHeader); v != "" {
		return v
	}
	return uuid.New().String()
}

var tracer = otel.Tracer("backoffice-middleware")

func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(
				r.Context(),
				"middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.method", r.Method),
				),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// jsonBody reads at most limit bytes of a JSON request body for logging and
// restores r.Body for the handler.
func jsonBody(r *http.Request, limit int) (any, error) {
	if r.Body == nil || !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return nil, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) > limit {
		return string(raw[:limit]) + "...", nil
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return string(raw), nil
	}
	return parsed, nil
}

// WithLogger creates the root span and the request-scoped logrus entry, and
// recovers panics into a 500.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	conf := configuration.Use()
	if opts.MaxBodyLength <= 0 {
		opts.MaxBodyLength = 512
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := getRequestID(r, conf)
			realIP := getRealIP(r, conf)

			fieldsLogger := logger.WithFields(logrus.Fields{
				"request-id": requestID,
				"path":       r.URL.Path,
				"method":     r.Method,
			})
			fieldsLogger.WithFields(logrus.Fields{
				"host":       r.Host,
				"ip":         realIP,
				"user-agent": r.UserAgent(),
			}).Info("request started")

			mutating := r.Method == http.MethodPost || r.Method == http.MethodPut ||
				r.Method == http.MethodPatch || r.Method == http.MethodDelete
			if opts.LogRequestBody && mutating {
				body, err := jsonBody(r, opts.MaxBodyLength)
				if err != nil {
					fieldsLogger.WithError(err).Error("failed to read request-body")
					http.Error(w, "failed to read request-body", http.StatusInternalServerError)
					return
				}
				if body != nil {
					fieldsLogger.WithField("request-body", body).Info("request-body parsed")
				}
			}

			propagator := propagation.TraceContext{}
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(
				ctx,
				"http.request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
					attribute.String("http.request_id", requestID),
					attribute.String("net.peer.ip", realIP),
				),
			)
			defer span.End()

			if sc := span.SpanContext(); sc.HasTraceID() {
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
				fieldsLogger = fieldsLogger.WithField("trace-id", sc.TraceID().String())
			}
			w.Header().Set("X-Request-Id", requestID)

			ctx = composables.WithLogger(ctx, fieldsLogger)
			ctx = composables.WithRequestID(ctx, requestID)
			ctx = context.WithValue(ctx, constants.RequestStart, start)

			wrapped := &responseCaptureWriter{ResponseWriter: w, body: &bytes.Buffer{}, limit: opts.MaxBodyLength}

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				fieldsLogger.WithFields(logrus.Fields{
					"panic":    recovered,
					"stack":    string(debug.Stack()),
					"query":    r.URL.RawQuery,
					"duration": time.Since(start),
				}).Error("panic recovered in request handler")

				if !wrapped.statusWritten {
					if opts.APIPrefix != "" && strings.HasPrefix(r.URL.Path, opts.APIPrefix) {
						wrapped.Header().Set("Content-Type", "application/json")
						wrapped.WriteHeader(http.StatusInternalServerError)
						_ = json.NewEncoder(wrapped).Encode(map[string]any{
							"code":    "INTERNAL_SERVER_ERROR",
							"message": "internal server error",
							"meta":    map[string]string{"request_id": requestID},
						})
					} else {
						http.Error(wrapped, "Internal Server Error", http.StatusInternalServerError)
					}
				}
				if opts.Repanic {
					panic(recovered)
				}
			}()

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			status := wrapped.Status()
			duration := time.Since(start)
			entry := fieldsLogger.WithFields(logrus.Fields{
				"duration":     duration,
				"status-code":  status,
				"status-class": status / 100,
			})
			if opts.LogResponseBody && strings.Contains(wrapped.Header().Get("Content-Type"), "application/json") {
				entry = entry.WithField("response-body", wrapped.body.String())
			}
			entry.Info("request completed")

			span.SetAttributes(
				attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
				attribute.Int("http.status_code", status),
			)
		})
	}
}
