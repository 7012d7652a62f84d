package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	topicOrderEvents   = "order_events"
	topicProductEvents = "product_events"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     uuid.UUID          `json:"order_id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount *decimal.Decimal   `json:"total_amount,omitempty"`
	At          time.Time          `json:"at"`
}

func (e OrderEvent) EventType() string { return e.Type }

type StockEvent struct {
	Type        string     `json:"type"`
	OrderID     uuid.UUID  `json:"order_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity"`
	StockBefore int        `json:"stock_before"`
	StockAfter  int        `json:"stock_after"`
	At          time.Time  `json:"at"`
}

func (e StockEvent) EventType() string { return e.Type }

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	At        time.Time `json:"at"`
}

func (e ProductEvent) EventType() string { return e.Type }

// publish is best-effort; a failed publish never fails the caller.
func publish(ctx context.Context, pub EventPublisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pub.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}
