package server

import (
	"time"

	"fitify/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs each HTTP request with latency and status.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Infof("%s %s -> %d (%dms) from %s",
			method, path, status, latency.Milliseconds(), clientIP)
	}
}
