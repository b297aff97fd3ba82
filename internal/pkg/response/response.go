package response

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Success: true,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装，HTTP 状态码与业务码一致
func Fail(c *gin.Context, businessCode int, message string) {
	FailWithDetail(c, businessCode, message, "")
}

func FailWithDetail(c *gin.Context, businessCode int, message string, detail string) {
	c.JSON(businessCode, dto.Response{
		Code:    businessCode,
		Success: false,
		Message: message,
		Data:    nil,
		Error:   detail,
	})
}

// Error 处理错误，只暴露业务错误的描述，未知错误记录日志后统一返回系统异常
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		FailWithDetail(c, BadRequest, service.ErrInvalidRequest.Error(), ve.Error())
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		FailWithDetail(c, BadRequest, service.ErrInvalidRequest.Error(), "Json错误")
		return
	}

	sentinel, code := service.ResolveError(err)
	if code >= InternalServerError {
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		Fail(c, code, sentinel.Error())
		return
	}
	FailWithDetail(c, code, sentinel.Error(), err.Error())
}
