package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Logger logs every request with a generated request id, the response
// status, and the handling duration. The id is echoed in X-Request-ID.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		rec := &statusRecorder{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		rec.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(rec, r)

		log.Printf(
			"%s %s %s %d %s",
			requestID,
			r.Method,
			r.URL.Path,
			rec.status,
			time.Since(start),
		)
	})
}
