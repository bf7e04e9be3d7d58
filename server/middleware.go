package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ceyewan/pulse/clog"
)

// HeaderRequestID 请求 ID 响应头
const HeaderRequestID = "X-Request-ID"

// requestIDMiddleware 为每个请求分配唯一 ID
//
// 调用方已携带 X-Request-ID 时沿用，否则生成新的 UUID。
// ID 同时写入响应头，便于跨服务关联日志。
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// accessLogMiddleware 记录请求访问日志
func accessLogMiddleware(logger clog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.InfoContext(c.Request.Context(), "http request",
			clog.String("method", c.Request.Method),
			clog.String("path", c.Request.URL.Path),
			clog.Int("status", c.Writer.Status()),
			clog.String("request_id", c.GetString(HeaderRequestID)),
			clog.Duration("elapsed", time.Since(start)))
	}
}
