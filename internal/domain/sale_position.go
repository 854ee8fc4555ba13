package domain

import "github.com/google/uuid"

// SalePosition is an order or cart line referencing a product
type SalePosition struct {
	Model
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Number    int       `json:"number" db:"number"`
}
