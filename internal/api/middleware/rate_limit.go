package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"astro-distribusi/backend/pkg/redis"
	"astro-distribusi/backend/pkg/response"
)

// SubmitRateLimit 采集值提交限流（Redis 滑动窗口）
// 已认证时按 user_id 计数，否则按客户端 IP；limit<=0 或 rdb 为 nil 时不限流
func SubmitRateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.GetString("user_id")
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), "rate_limit:submit:"+subject, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，降级放行", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter(window))
			response.Error(c, http.StatusTooManyRequests, 10004, "提交过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
