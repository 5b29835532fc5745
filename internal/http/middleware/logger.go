package middleware

import (
	"time"

	"travelwizards/internal/utils"

	"github.com/gin-gonic/gin"
)

// Logger writes one structured line per request, tagged with request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		log := utils.Logger().Info
		if status >= 500 {
			log = utils.Logger().Error
		}
		log("http request",
			"module", "HTTP",
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", float64(latency.Microseconds())/1000.0,
			"ip", c.ClientIP(),
		)
	}
}
