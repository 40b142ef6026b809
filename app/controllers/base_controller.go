package controllers

import (
	"errors"
	"net/http"

	"github.com/beego/beego/v2/server/web"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/docuchat/backend-go/internal/errors"
)

// 请求体结构校验器，controller共用一个实例
var validate = validator.New()

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a standard success envelope.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// JSONAppError 按应用错误的HTTP码和错误码输出
func (c *BaseController) JSONAppError(err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPCode, map[string]interface{}{
			"success": false,
			"code":    appErr.Code,
			"error":   appErr.Message,
		})
		return
	}
	c.JSONError(http.StatusInternalServerError, "internal server error")
}

// currentUserID 读取认证中间件写入的用户ID
func (c *BaseController) currentUserID() (uint, bool) {
	v := c.Ctx.Input.GetData("user_id")
	if v == nil {
		return 0, false
	}
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
