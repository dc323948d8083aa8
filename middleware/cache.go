package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Olga07122007/yatube-project/cache"
)

// bodyCapturer tees the response body so a successful render can be
// stored after the handler chain finishes.
type bodyCapturer struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCapturer) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapturer) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves whole rendered pages from the injected store for ttl.
// The key covers path plus query string, so every page number caches
// separately. Only 200 responses are stored; creating a post does not
// invalidate entries, so a stale index may be served until expiry.
func CachePage(store cache.Store, prefix string, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := cache.Key(prefix, ctx.Request.URL.RequestURI())

		if b, ok := store.Get(ctx.Request.Context(), key); ok {
			ctx.Data(http.StatusOK, "text/html; charset=utf-8", b)
			ctx.Abort()
			return
		}

		capturer := &bodyCapturer{ResponseWriter: ctx.Writer}
		ctx.Writer = capturer
		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK && capturer.body.Len() > 0 {
			store.Set(ctx.Request.Context(), key, capturer.body.Bytes(), ttl)
		}
	}
}
