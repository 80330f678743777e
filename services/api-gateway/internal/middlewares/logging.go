package middlewares

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLog logs method, path, status and duration for every request.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[gateway] %s %s - %d - %s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
