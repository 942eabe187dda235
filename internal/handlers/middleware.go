package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	models "redirector/internal/domain/models/json"
)

type (
	responseData struct {
		status      int
		size        int
		wroteHeader bool
	}

	loggingResponseWriter struct {
		http.ResponseWriter
		responseData *responseData
	}
)

// Write records the number of bytes written for the request log.
func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	r.responseData.wroteHeader = true
	return size, err
}

// WriteHeader records the status code for the request log.
func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
	r.responseData.wroteHeader = true
}

// LoggingMiddleware logs uri, method, status, size and duration of every request.
func (con *Controller) LoggingMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rd := &responseData{status: http.StatusOK}
		lw := &loggingResponseWriter{ResponseWriter: res, responseData: rd}

		h.ServeHTTP(lw, req)

		con.sugar.Infow("request",
			"uri", req.RequestURI,
			"method", req.Method,
			"status", rd.status,
			"size", rd.size,
			"duration", time.Since(start),
		)
	})
}

// PanicRecoveryMiddleware turns a panic into a generic 500 JSON body and logs the detail.
// A response already under way is left as is; only the panic is logged.
func (con *Controller) PanicRecoveryMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		rd := &responseData{status: http.StatusOK}
		tw := &loggingResponseWriter{ResponseWriter: res, responseData: rd}
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				con.sugar.Errorw("panic recovered",
					"panic", rec,
					"uri", req.RequestURI,
					"method", req.Method,
					"headers_sent", rd.wroteHeader,
				)
				if rd.wroteHeader {
					return
				}
				res.Header().Set("Content-Type", "application/json")
				res.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(res).Encode(models.ErrorResponse{Success: false, Error: msgInternal})
			}
		}()
		h.ServeHTTP(tw, req)
	})
}

// NoStoreMiddleware forbids caching at every layer; tokens and selections are per request.
func NoStoreMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		hdr := res.Header()
		hdr.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		hdr.Set("Pragma", "no-cache")
		hdr.Set("Expires", "0")
		hdr.Set("Surrogate-Control", "no-store")
		h.ServeHTTP(res, req)
	})
}
