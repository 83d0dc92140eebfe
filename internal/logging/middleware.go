// ABOUTME: HTTP request logging middleware for the panel API.
// ABOUTME: Records method, path, model, status, duration, operator and truncated bodies in the store.

package logging

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/2389/panel/internal/auth"
	"github.com/2389/panel/internal/store"
)

const maxBodySize = 10 * 1024 // 10KB limit for body capture

// logsPath serves the request log itself and is never logged
const logsPath = "/api/logs"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	if rw.body.Len() < maxBodySize {
		toCopy := len(b)
		if rw.body.Len()+toCopy > maxBodySize {
			toCopy = maxBodySize - rw.body.Len()
		}
		rw.body.Write(b[:toCopy])
	}
	return rw.ResponseWriter.Write(b)
}

// Middleware logs panel API requests to the store. Writes happen in the
// background so a slow database never delays a response.
func Middleware(s *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s == nil || r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, logsPath) {
				next.ServeHTTP(w, r)
				return
			}

			var requestBody string
			if r.Body != nil {
				bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
				if err == nil {
					requestBody = string(bodyBytes)
					// Hand the handler the captured prefix followed by whatever was not read
					r.Body = readCloser{io.MultiReader(bytes.NewReader(bodyBytes), r.Body), r.Body}
				}
			}

			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}

			next.ServeHTTP(wrapped, r)

			entry := &store.RequestLog{
				ModelName:    GetModelFromPath(r.URL.Path),
				Method:       r.Method,
				Path:         r.URL.Path,
				StatusCode:   wrapped.statusCode,
				DurationMs:   int(time.Since(start).Milliseconds()),
				UserID:       auth.OperatorFromContext(r.Context()),
				IPAddress:    clientIP(r),
				UserAgent:    r.Header.Get("User-Agent"),
				RequestBody:  requestBody,
				ResponseBody: wrapped.body.String(),
			}
			if wrapped.statusCode >= http.StatusBadRequest {
				entry.Error = http.StatusText(wrapped.statusCode)
			}

			go func() {
				if err := s.LogRequest(entry); err != nil {
					log.Printf("Failed to log request %s %s: %v", entry.Method, entry.Path, err)
				}
			}()
		})
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return r.RemoteAddr
}
