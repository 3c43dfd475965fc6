package handlers

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

const requestIDKey = "RequestID"

// RequestID tags every request with an id, reusing the caller's X-Request-ID
// when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// AccessLog logs one line per request, at a level chosen by status.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		requestID := c.GetString(requestIDKey)
		latency := time.Since(start)
		switch {
		case status >= http.StatusInternalServerError:
			logger.Errorf("[%s] %s %s -> %d (%v) %s", requestID, c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.String())
		case status >= http.StatusBadRequest:
			logger.Warningf("[%s] %s %s -> %d (%v)", requestID, c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			logger.Infof("[%s] %s %s -> %d (%v)", requestID, c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}

var gzipPool sync.Pool

func getGzipWriter(w io.Writer) *gzip.Writer {
	if v := gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw
	}
	gw, _ := gzip.NewWriterLevel(w, gzip.DefaultCompression)
	return gw
}

func releaseGzipWriter(gw *gzip.Writer) {
	_ = gw.Close()
	gzipPool.Put(gw)
}

func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gw       *gzip.Writer
	disabled bool
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.disabled {
		return w.ResponseWriter.Write(b)
	}
	w.Header().Del("Content-Length")
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return w.gw.Write(b)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	if isNoBodyStatus(code) {
		w.disabled = true
		w.Header().Del("Content-Encoding")
		w.Header().Del("Vary")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipResponseWriter) Flush() {
	if !w.disabled {
		_ = w.gw.Flush()
	}
	w.ResponseWriter.Flush()
}

// Gzip compresses responses for clients that accept it.
func Gzip() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead ||
			!strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") ||
			c.Writer.Header().Get("Content-Encoding") != "" {
			c.Next()
			return
		}

		c.Header("Content-Encoding", "gzip")
		c.Writer.Header().Add("Vary", "Accept-Encoding")

		gw := getGzipWriter(c.Writer)
		cw := &gzipResponseWriter{ResponseWriter: c.Writer, gw: gw}
		c.Writer = cw
		defer func() {
			// A 204 or 304 must not get a gzip footer.
			if cw.disabled {
				gw.Reset(io.Discard)
			}
			releaseGzipWriter(gw)
			c.Writer = cw.ResponseWriter
		}()

		c.Next()
	}
}
