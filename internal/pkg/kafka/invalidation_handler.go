package kafka

import (
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// InvalidateFunc 按用户 ID 删除缓存
type InvalidateFunc func(ctx context.Context, userIDs ...uint64) error

// InvalidationHandler 监听某张表的 binlog，将变更行对应的用户缓存删除
type InvalidationHandler struct {
	name       string
	table      string
	column     string
	invalidate InvalidateFunc
}

// NewUserDetailHandler user_detail 变更后删除资料缓存
func NewUserDetailHandler(invalidate InvalidateFunc) *InvalidationHandler {
	return &InvalidationHandler{name: "topic-user-detail", table: "user_detail", column: "user_id", invalidate: invalidate}
}

// NewUserBlockHandler user_blocks 变更后删除拉黑者的黑名单缓存
func NewUserBlockHandler(invalidate InvalidateFunc) *InvalidationHandler {
	return &InvalidationHandler{name: "topic-user-blocks", table: "user_blocks", column: "blocker_id", invalidate: invalidate}
}

func (s *InvalidationHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("consumer setup", "name", s.name)
	return nil
}

func (s *InvalidationHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("consumer cleanup", "name", s.name)
	return nil
}

func (s *InvalidationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("process batch error", "name", s.name, "err", err)
		return err
	}
	return nil
}

func (s *InvalidationHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, s.table)
	if err != nil {
		return err
	}
	switch canalMsg.Type {
	case INSERT, UPDATE, DELETE:
	default:
		return errSkipMessage
	}

	ids := canalMsg.Column(s.column)
	if len(ids) == 0 {
		return errSkipMessage
	}
	return s.invalidate(ctx, ids...)
}
