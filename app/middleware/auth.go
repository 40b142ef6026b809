package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/beego/beego/v2/server/web"
	beecontext "github.com/beego/beego/v2/server/web/context"
	"go.uber.org/zap"

	"github.com/docuchat/backend-go/internal/auth"
	"github.com/docuchat/backend-go/internal/logger"
)

// 免认证路径
var publicPaths = []string{
	"/health",
	"/metrics",
}

// NewAuthFilter JWT认证过滤器，通过后把user_id写入请求上下文
func NewAuthFilter(jwtService *auth.JWTService) web.FilterFunc {
	return func(ctx *beecontext.Context) {
		path := ctx.Input.URL()
		for _, public := range publicPaths {
			if path == public || strings.HasPrefix(path, public+"/") {
				return
			}
		}

		token, err := auth.ExtractTokenFromHeader(ctx.Input.Header("Authorization"))
		if err != nil {
			unauthorized(ctx, err.Error())
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			logger.Debug("token validation failed",
				zap.String("path", path),
				zap.Error(err))
			unauthorized(ctx, "invalid or expired token")
			return
		}

		ctx.Input.SetData("user_id", claims.UserID)
	}
}

func unauthorized(ctx *beecontext.Context, message string) {
	ctx.Output.SetStatus(http.StatusUnauthorized)
	payload, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   message,
	})
	ctx.Output.Header("Content-Type", "application/json; charset=utf-8")
	ctx.Output.Body(payload)
}
