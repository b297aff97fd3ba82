package kafka

import (
	"Rendezvous/internal/api/config"
	"context"
	log "log/slog"
	"sync"

	"github.com/IBM/sarama"
)

type consumer struct {
	name    string
	topic   string
	group   sarama.ConsumerGroup
	handler sarama.ConsumerGroupHandler
}

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	consumers []*consumer
}

// NewConsumerManager 为资料与黑名单两张表各建一个消费组
func NewConsumerManager(cfg *config.Config, invalidateProfile, invalidateBlocks InvalidateFunc) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)
	m := &ConsumerManager{}

	specs := []struct {
		name    string
		topic   string
		groupID string
		handler sarama.ConsumerGroupHandler
	}{
		{"user_detail", cfg.KafkaUserDetailConsumer.Topic, cfg.KafkaUserDetailConsumer.GroupID, NewUserDetailHandler(invalidateProfile)},
		{"user_blocks", cfg.KafkaUserBlockConsumer.Topic, cfg.KafkaUserBlockConsumer.GroupID, NewUserBlockHandler(invalidateBlocks)},
	}
	for _, spec := range specs {
		group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, spec.groupID, saramaCfg)
		if err != nil {
			m.close()
			return nil, err
		}
		m.consumers = append(m.consumers, &consumer{name: spec.name, topic: spec.topic, group: group, handler: spec.handler})
	}
	return m, nil
}

// Start 启动所有消费者，阻塞直到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, c := range m.consumers {
		wg.Add(1)
		go func(c *consumer) {
			defer wg.Done()
			log.Info("consumer started", "name", c.name, "topic", c.topic)
			for {
				if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
					log.Error("Error from consumer", "name", c.name, "err", err)
				}
				if ctx.Err() != nil {
					return
				}
			}
		}(c)
		go func(c *consumer) {
			for err := range c.group.Errors() {
				log.Error("consumer group error", "name", c.name, "err", err)
			}
		}(c)
	}

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")
	m.close()
	wg.Wait()
	return nil
}

func (m *ConsumerManager) close() {
	for _, c := range m.consumers {
		if err := c.group.Close(); err != nil {
			log.Error("Failed to close consumer", "name", c.name, "err", err)
		}
	}
}
