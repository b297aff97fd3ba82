package service

import (
	"Rendezvous/internal/pkg/metrics"
	"Rendezvous/internal/pkg/mongo"
	"Rendezvous/internal/pkg/translate"
	"context"
	log "log/slog"

	"github.com/pkg/errors"
)

const defaultSourceLanguage = "en"

// ContentBuilder 组装多语言消息体，只有显式要求时才调用翻译引擎
type ContentBuilder interface {
	Build(ctx context.Context, text string, needsTranslation bool) (*mongo.MessageContent, error)
}

type contentBuilderImpl struct {
	engine translate.Engine
}

func NewContentBuilder(engine translate.Engine) ContentBuilder {
	return &contentBuilderImpl{engine: engine}
}

func (s *contentBuilderImpl) Build(ctx context.Context, text string, needsTranslation bool) (*mongo.MessageContent, error) {
	if !needsTranslation {
		return &mongo.MessageContent{
			OriginalText:   text,
			SourceLanguage: defaultSourceLanguage,
			TranslationEn:  text,
		}, nil
	}

	if s.engine == nil {
		return nil, ErrTranslationUnavailable
	}
	res, err := s.engine.Translate(ctx, text)
	if err != nil {
		metrics.Translations.WithLabelValues(metrics.ResultFailed).Inc()
		log.WarnContext(ctx, "translate failed", "err", err)
		return nil, errors.WithMessage(ErrTranslationUnavailable, err.Error())
	}
	metrics.Translations.WithLabelValues(metrics.ResultOK).Inc()

	return &mongo.MessageContent{
		OriginalText:   text,
		SourceLanguage: res.DetectedLanguage,
		TranslationEn:  res.En,
		TranslationFr:  res.Fr,
		TranslationEs:  res.Es,
	}, nil
}
