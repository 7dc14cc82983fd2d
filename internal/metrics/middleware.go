package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware records every request's duration against the matched
// route pattern.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		RecordRequestDuration(c.Request.Context(), c.Request.Method+" "+route, time.Since(start).Seconds())
	}
}
