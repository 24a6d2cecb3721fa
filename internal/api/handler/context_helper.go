package handler

import (
	"github.com/gin-gonic/gin"

	"astro-distribusi/backend/internal/service"
	"astro-distribusi/backend/pkg/response"
)

// MustGetCaller 从 Gin 上下文中提取调用方身份。
// JWT 中间件未注入 user_id 时写入 401 响应并返回 false，调用方应直接 return。
func MustGetCaller(c *gin.Context) (*service.Caller, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	uid, ok := v.(string)
	if !ok || uid == "" {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}

	return &service.Caller{UserID: uid, Elevated: c.GetBool("elevated")}, true
}
