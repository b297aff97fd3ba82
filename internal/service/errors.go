package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	TooManyRequests     = 429
	BadGateway          = 502
	ServiceUnavailable  = 503
	InternalServerError = 500
)

var (
	ErrInvalidRequest         = errors.New("参数错误")
	ErrConversationNotFound   = errors.New("会话不存在")
	ErrMessageNotFound        = errors.New("消息不存在")
	ErrAttachmentNotFound     = errors.New("附件不存在")
	ErrTranslationUnavailable = errors.New("翻译服务不可用")
	ErrDependencyFailure      = errors.New("存储服务异常")
	ErrFileNotSupported       = errors.New("不支持的文件类型")
	ErrBlockSelf              = errors.New("不能拉黑自己")
	ErrTooManyRequests        = errors.New("请求过于频繁")
	UnauthorizedError         = errors.New("权限不足")
	UnExpectedError           = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrInvalidRequest:         BadRequest,
	ErrConversationNotFound:   NotFound,
	ErrMessageNotFound:        NotFound,
	ErrAttachmentNotFound:     NotFound,
	ErrTranslationUnavailable: ServiceUnavailable,
	ErrDependencyFailure:      BadGateway,
	ErrFileNotSupported:       BadRequest,
	ErrBlockSelf:              BadRequest,
	ErrTooManyRequests:        TooManyRequests,
	UnauthorizedError:         Unauthorized,
	UnExpectedError:           InternalServerError,
}

// ResolveError 找到错误链上的业务错误及其状态码，未知错误返回 UnExpectedError
func ResolveError(err error) (error, int) {
	for sentinel, code := range ErrorMap {
		if errors.Is(err, sentinel) {
			return sentinel, code
		}
	}
	return UnExpectedError, InternalServerError
}
