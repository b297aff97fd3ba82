package llm

import (
	"Rendezvous/internal/pkg/translate"
	"context"
	"errors"
	log "log/slog"

	"github.com/goccy/go-json"
	"github.com/tmc/langchaingo/llms"
)

// Translator 基于大模型的翻译引擎
type Translator struct {
	model  llms.Model
	prompt string
}

// NewTranslator 使用 InitLLM 初始化的全局客户端
func NewTranslator() *Translator {
	return &Translator{model: llmClient, prompt: translatePrompt}
}

func NewTranslatorWithModel(model llms.Model, prompt string) *Translator {
	return &Translator{model: model, prompt: prompt}
}

func (t *Translator) Translate(ctx context.Context, text string) (*translate.Result, error) {
	if t.model == nil {
		return nil, errors.New("llm client is not initialized")
	}

	resp, err := fetchModel(ctx, t.model, t.prompt, text, 0.1)
	if err != nil {
		log.ErrorContext(ctx, "AI大模型请求失败", "err", err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, translate.ErrEmptyResult
	}

	result := &translate.Result{}
	if err = json.Unmarshal([]byte(cleanJSON(resp.Choices[0].Content)), result); err != nil {
		log.ErrorContext(ctx, "AI大模型返回数据解析失败", "err", err)
		return nil, err
	}
	if result.DetectedLanguage == "" {
		return nil, translate.ErrEmptyResult
	}
	return result, nil
}
