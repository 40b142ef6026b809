package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/docuchat/backend-go/internal/logger"
)

// ProcessHandler 文档处理事件的处理函数
type ProcessHandler func(ctx context.Context, event *DocumentProcessEvent) error

// Consumer 文档处理事件消费者
type Consumer struct {
	consumer sarama.ConsumerGroup
	groupID  string
	topic    string
	handler  ProcessHandler
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewConsumer 创建Kafka消费者组
func NewConsumer(brokers []string, groupID, topic string, handler ProcessHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true
	config.Version = sarama.V2_6_0_0

	consumerGroup, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Consumer{
		consumer: consumerGroup,
		groupID:  groupID,
		topic:    topic,
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
	}

	logger.Info("kafka consumer initialized",
		zap.Strings("brokers", brokers),
		zap.String("group_id", groupID),
		zap.String("topic", topic))

	return c, nil
}

// Start 启动消费循环
func (c *Consumer) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			default:
			}
			if err := c.consumer.Consume(c.ctx, []string{c.topic}, c); err != nil {
				logger.Error("kafka consume error", zap.Error(err))
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consumer.Errors() {
			logger.Error("kafka consumer group error", zap.Error(err))
		}
	}()
}

// Close 停止消费并关闭连接
func (c *Consumer) Close() error {
	c.cancel()
	err := c.consumer.Close()
	c.wg.Wait()
	return err
}

// Setup 实现sarama.ConsumerGroupHandler
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup 实现sarama.ConsumerGroupHandler
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim 逐条处理文档事件，处理失败也提交offset避免毒消息阻塞分区
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event DocumentProcessEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Error("failed to decode document event",
				zap.Int64("offset", message.Offset),
				zap.Error(err))
			session.MarkMessage(message, "")
			continue
		}

		if err := c.handler(session.Context(), &event); err != nil {
			logger.Error("document event processing failed",
				zap.Uint("documentID", event.DocumentID),
				zap.Error(err))
		}
		session.MarkMessage(message, "")
	}
	return nil
}
