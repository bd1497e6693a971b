package mw

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache keeps successful GET responses for duration, keyed by request URI.
// Any successful write that passes through the same middleware flushes the
// cache, so reads served here never lag behind writes made in this process.
func Cache(store *cache.Cache, duration time.Duration) gin.HandlerFunc {
	// gen counts flushes. A GET that started before a flush must not store
	// the body it read, since the write may have landed after that read.
	var (
		mu  sync.Mutex
		gen uint64
	)
	generation := func() uint64 {
		mu.Lock()
		defer mu.Unlock()
		return gen
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			if c.Request.Method != http.MethodOptions && c.Writer.Status() < http.StatusBadRequest {
				mu.Lock()
				gen++
				store.Flush()
				mu.Unlock()
			}
			return
		}

		key := c.Request.RequestURI
		if resp, found := store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		started := generation()
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() < 200 || blw.Status() >= 300 {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if gen != started {
			return
		}
		store.Set(key, cachedResponse{
			status:  blw.Status(),
			headers: blw.Header().Clone(),
			body:    blw.body.Bytes(),
		}, duration)
	}
}
