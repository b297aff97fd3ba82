package translate

import (
	"context"
	"errors"
)

// ErrEmptyResult 翻译引擎返回空结果
var ErrEmptyResult = errors.New("translate: empty result")

// Result 翻译引擎的统一输出
type Result struct {
	DetectedLanguage string `json:"detectedLanguage"`
	En               string `json:"en"`
	Fr               string `json:"fr"`
	Es               string `json:"es"`
}

// Engine 翻译引擎
type Engine interface {
	Translate(ctx context.Context, text string) (*Result, error)
}
