/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// admissionGate implements spec.md §4.C10's backpressure: a weighted
// semaphore sized to the connection limit that fails new requests
// immediately, before dispatch, once the cap is exceeded, rather than
// queuing them behind it.
type admissionGate struct {
	sem *semaphore.Weighted
	cap int64
}

func newAdmissionGate(cap int) *admissionGate {
	c := int64(cap)
	if c <= 0 {
		c = 1<<63 - 1
	}
	return &admissionGate{sem: semaphore.NewWeighted(c), cap: c}
}

func (g *admissionGate) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.sem.TryAcquire(1) {
			e := Err(ServerOverloaded, "")
			c.JSON(http.StatusServiceUnavailable, errorBody{
				Error:    e.Error(),
				Category: string(e.Category()),
				Value:    int(e.Code()),
			})
			c.Abort()
			return
		}
		defer g.sem.Release(1)
		c.Next()
	}
}

// corsMiddleware enables permissive CORS for every origin and answers
// OPTIONS with the allowed-methods list (spec.md §4.C10 step 1).
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

// gzipWriter wraps gin.ResponseWriter so c.Writer.Write transparently
// compresses the body when the client advertises gzip support.
type gzipWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	return w.gz.Write(b)
}

// gzipMiddleware gzip-encodes the response body when the request's
// Accept-Encoding header contains "gzip" (spec.md §4.C10 "Response
// shaping").
func gzipMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz := gzip.NewWriter(c.Writer)
		defer gz.Close()

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = &gzipWriter{ResponseWriter: c.Writer, gz: gz}
		c.Next()
	}
}
