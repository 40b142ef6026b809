package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/docuchat/backend-go/internal/logger"
)

// DocumentProcessEvent 文档处理事件，上传接口发布，处理worker消费
type DocumentProcessEvent struct {
	DocumentID uint      `json:"document_id"`
	UserID     uint      `json:"user_id"`
	FilePath   string    `json:"file_path"`
	MediaType  string    `json:"media_type"`
	Timestamp  time.Time `json:"timestamp"`
}

// Producer Kafka生产者
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer 创建Kafka生产者
func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic))

	return &Producer{
		producer: producer,
		topic:    topic,
	}, nil
}

// PublishDocumentProcess 发布文档处理事件，按document_id分区保证单文档有序
func (p *Producer) PublishDocumentProcess(event *DocumentProcessEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}

	event.Timestamp = time.Now()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", event.DocumentID)),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	logger.Debug("document process event published",
		zap.Uint("documentID", event.DocumentID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))

	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
