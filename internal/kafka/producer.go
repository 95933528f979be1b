package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"ozon-calc/internal/config"
	"ozon-calc/internal/logger"
	"ozon-calc/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует события расчетов и справочника категорий в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает нового производителя Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает производителя
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// publishEvent сериализует событие и отправляет его в указанный топик
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"event_id":  event.ID,
		"type":      event.Type,
	}).Debug("Event published to Kafka")

	return nil
}

// PublishCalculationPerformed публикует событие о выполненном расчете
func (p *Producer) PublishCalculationPerformed(calc *models.Calculation) error {
	event := models.Event{
		ID:   uuid.New(),
		Type: models.EventTypeCalculationPerformed,
		Data: map[string]interface{}{
			"calculation_id": calc.ID,
			"category_id":    calc.CategoryID,
			"price":          calc.Price,
			"monthly_sales":  calc.MonthlySales,
		},
		Timestamp: time.Now(),
	}
	return p.publishEvent(p.topics.Calculations, event)
}

// PublishCategoriesImported публикует событие об импорте справочника категорий
func (p *Producer) PublishCategoriesImported(result models.ImportResult) error {
	event := models.Event{
		ID:   uuid.New(),
		Type: models.EventTypeCategoriesImported,
		Data: map[string]interface{}{
			"imported": result.Imported,
			"skipped":  result.Skipped,
		},
		Timestamp: time.Now(),
	}
	return p.publishEvent(p.topics.Categories, event)
}

// PublishCategoryUpdated публикует событие об изменении комиссий категории
func (p *Producer) PublishCategoryUpdated(category *models.Category) error {
	event := models.Event{
		ID:   uuid.New(),
		Type: models.EventTypeCategoryUpdated,
		Data: map[string]interface{}{
			"category_id":    category.ID,
			"name":           category.Name,
			"fbo_commission": category.FBOCommission,
			"fbs_commission": category.FBSCommission,
		},
		Timestamp: time.Now(),
	}
	return p.publishEvent(p.topics.Categories, event)
}
