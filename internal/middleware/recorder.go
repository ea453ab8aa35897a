package middleware

import "net/http"

// ResponseRecorder wraps ResponseWriter and captures the status code and body size.
type ResponseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	if statusCode < 100 {
		statusCode = http.StatusOK
	}
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

func (rw *ResponseRecorder) Status() int { return rw.status }

func (rw *ResponseRecorder) BytesWritten() int64 { return rw.bytes }

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *ResponseRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
