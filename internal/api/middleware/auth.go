package middleware

import (
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/response"
	"Rendezvous/internal/pkg/security"
	"context"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验身份服务签发的 JWT，并将用户 ID 注入 gin.Context 与 request context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := security.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(token)
		if err != nil {
			log.WarnContext(c.Request.Context(), "鉴权失败", "path", c.FullPath(), "err", err)
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set(consts.CtxUserID, claims.UserID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), consts.CtxUserID, claims.UserID))

		c.Next()
	}
}
