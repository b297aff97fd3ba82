package llm

import (
	"Rendezvous/internal/api/config"
	"context"
	log "log/slog"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

func readPrompt(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		log.Error("读取prompt文件失败", "err", err)
		return ""
	}
	return string(data)
}

func fetchModel(ctx context.Context, model llms.Model, systemPrompt string, userPrompt string, temp float64) (*llms.ContentResponse, error) {
	if err := TextSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer TextSem.Release(1)
	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userPrompt),
			},
		},
	}
	log.InfoContext(ctx, "正在请求AI大模型")
	opts := []llms.CallOption{llms.WithTemperature(temp)}
	if config.Cfg != nil && config.Cfg.LLM.TextModel != "" {
		opts = append(opts, llms.WithModel(config.Cfg.LLM.TextModel))
	}
	return model.GenerateContent(ctx, messages, opts...)
}

// cleanJSON 去掉模型输出中可能携带的代码块标记
func cleanJSON(s string) string {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
