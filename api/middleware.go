package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-in-browser/logger"
	"github.com/sirupsen/logrus"
)

// requestLogger 用 logrus 记录每个请求
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}
