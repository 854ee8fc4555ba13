package events

import (
	"time"

	"github.com/google/uuid"
)

// Product event types
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// ProductEvent is published whenever a product changes
type ProductEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID uuid.UUID `json:"product_id"`
	Article   int       `json:"article,omitempty"`
	Title     string    `json:"title,omitempty"`
	Price     float64   `json:"price,omitempty"`
}
