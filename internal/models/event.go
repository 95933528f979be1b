package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType описывает тип события в системе.
type EventType string

const (
	EventTypeCalculationPerformed EventType = "calculation.performed"
	EventTypeCategoriesImported   EventType = "categories.imported"
	EventTypeCategoryUpdated      EventType = "category.updated"
)

// Event представляет доменное событие, публикуемое в Kafka.
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
