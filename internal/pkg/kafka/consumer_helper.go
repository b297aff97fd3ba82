package kafka

import (
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
	maxRetries   = 5
)

// errSkipMessage 消息与当前消费者无关，直接确认
var errSkipMessage = errors.New("skip message")

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session.Context(), batch, logic)
					session.MarkMessage(batch[len(batch)-1], "")
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session.Context(), batch, logic)
				session.MarkMessage(batch[len(batch)-1], "")
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session.Context(), batch, logic)
				session.MarkMessage(batch[len(batch)-1], "")
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 并发处理一批消息，失败的消息指数退避重试，超过次数后丢弃
// 缓存失效类消息丢弃后最多读到 TTL 内的旧数据
func processBatch(ctx context.Context, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	var wg sync.WaitGroup

	for _, msg := range messages {
		wg.Add(1)

		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			retryInterval := 100 * time.Millisecond

			for attempt := 1; ; attempt++ {
				err := logic(ctx, m)
				if err == nil || errors.Is(err, errSkipMessage) {
					return
				}
				if attempt >= maxRetries {
					log.Error("drop message after retries", "topic", m.Topic, "offset", m.Offset, "err", err)
					return
				}
				log.Warn("process message error", "topic", m.Topic, "offset", m.Offset, "attempt", attempt, "err", err)

				select {
				case <-ctx.Done():
					return
				case <-time.After(retryInterval):
				}

				retryInterval *= 2
				if retryInterval > 5*time.Second {
					retryInterval = 5 * time.Second
				}
			}
		}(msg)
	}

	wg.Wait()
}

// ToCanalMessage 将kafka消息转换为canal消息结构体，非目标表的消息返回 errSkipMessage
func ToCanalMessage(msg *sarama.ConsumerMessage, tableName string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		log.Error("unmarshal canal message error", "err", err)
		return nil, errSkipMessage
	}

	if canalMsg.IsDDL || canalMsg.Table != tableName || len(canalMsg.Data) == 0 {
		return nil, errSkipMessage
	}

	return &canalMsg, nil
}
