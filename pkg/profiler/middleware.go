package profiler

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Middleware instruments each request as one measurement identified by
// method and path. A handler panic or a 5xx response records the row
// as broken; panics propagate after the row is written.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := newMeasurement(r.Method+" "+r.URL.Path, cfg, 3)
			if err := m.Start(); err != nil {
				// Fresh measurement can't be in a bad state; never
				// block the request over instrumentation
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if rcv := recover(); rcv != nil {
					m.MarkBroken(fmt.Sprintf("%T", rcv), fmt.Sprint(rcv), string(debug.Stack()))
					m.Stop()
					panic(rcv)
				}
				if rec.status >= http.StatusInternalServerError {
					m.MarkBroken("http", fmt.Sprintf("status %d", rec.status), "")
				}
				m.Stop()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// statusRecorder captures the response status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
