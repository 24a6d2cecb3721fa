package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"astro-distribusi/backend/pkg/jwt"
	"astro-distribusi/backend/pkg/redis"
	"astro-distribusi/backend/pkg/response"
)

// JWTAuth 校验外部签发的 Access Token 并注入调用方身份
// 注入 user_id、elevated、token_jti；rdb 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, 10002, "缺少或无效的认证头")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}
		if claims.TokenType != "access" || claims.UserID == "" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Redis 故障时放行，与限流降级策略一致
				logger.Warn("黑名单检查失败，降级放行", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("elevated", claims.Elevated)
		c.Set("token_jti", claims.ID)

		c.Next()
	}
}

// RequireElevated 仅允许提权调用方通过
// 服务层同样会校验，这里用于整组只读给管理端的路由
func RequireElevated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_id"); !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}
		if !c.GetBool("elevated") {
			response.Forbidden(c, 10003, "需要提权身份")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
