package service

import (
	"Rendezvous/internal/api/config"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

func imConfig() config.IMConfig {
	if config.Cfg != nil {
		return config.Cfg.IM
	}
	return config.Default().IM
}

// previewOf 会话列表预览：有正文原样使用，否则用附件占位符
func previewOf(text string) string {
	if strings.TrimSpace(text) != "" {
		return text
	}
	placeholder := imConfig().AttachmentPlaceholder
	if placeholder == "" {
		placeholder = config.DefaultAttachmentPlaceholder
	}
	return placeholder
}

// checkTextLength 正文超长直接拒绝，保证摘要与正文一致
func checkTextLength(text string) error {
	limit := imConfig().MaxTextLength
	if limit <= 0 {
		limit = config.DefaultMaxTextLength
	}
	if n := utf8.RuneCountInString(text); n > limit {
		return errors.WithMessagef(ErrInvalidRequest, "text too long: %d > %d", n, limit)
	}
	return nil
}
