package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder captures the response status for the logging and tracing
// middleware. A zero code means the handler never called WriteHeader, which
// net/http treats as 200.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func record(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w}
}

// WriteHeader records the first status written; later calls are dropped,
// matching net/http's superfluous-WriteHeader behavior.
func (sr *statusRecorder) WriteHeader(code int) {
	if sr.code != 0 {
		return
	}
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

// Code returns the recorded status, defaulting to 200 when the handler
// wrote the body directly.
func (sr *statusRecorder) Code() int {
	if sr.code == 0 {
		return http.StatusOK
	}
	return sr.code
}

// Logging writes one summary line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorded := record(w)
		next.ServeHTTP(recorded, r)

		log.Printf("Request completed: method=%s path=%s status=%d duration=%s",
			r.Method, r.URL.Path, recorded.Code(), time.Since(start))
	})
}
