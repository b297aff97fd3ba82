package translate

import (
	"Rendezvous/internal/api/config"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

type remoteRequest struct {
	Text    string   `json:"text"`
	Targets []string `json:"targets"`
}

// RemoteEngine 通过 HTTP 调用外部翻译服务
type RemoteEngine struct {
	client *resty.Client
}

func NewRemoteEngine(cfg *config.TranslatorConfig) *RemoteEngine {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Content-Type", "application/json")
	if cfg.ApiKey != "" {
		client.SetAuthToken(cfg.ApiKey)
	}
	return &RemoteEngine{client: client}
}

func (e *RemoteEngine) Translate(ctx context.Context, text string) (*Result, error) {
	result := &Result{}
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(&remoteRequest{Text: text, Targets: []string{"en", "fr", "es"}}).
		SetResult(result).
		Post("/translate")
	if err != nil {
		log.ErrorContext(ctx, "translate request failed", "err", err)
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("translate: remote returned %d", resp.StatusCode())
	}
	if result.DetectedLanguage == "" && result.En == "" {
		return nil, ErrEmptyResult
	}
	return result, nil
}
