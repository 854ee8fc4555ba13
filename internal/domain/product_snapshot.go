package domain

import "github.com/google/uuid"

// ProductSnapshot is the exported, serializable state of a product.
// Sale positions are loaded lazily and are not part of it.
type ProductSnapshot struct {
	ID          uuid.UUID `json:"id"`
	Article     int       `json:"article" validate:"gt=0"`
	Title       string    `json:"title" validate:"max=255"`
	URL         string    `json:"url" validate:"max=255"`
	Parameters  string    `json:"parameters,omitempty"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price" validate:"gte=0"`
	Category    *Category `json:"category,omitempty"`
	Photo       *Photo    `json:"photo,omitempty"`
}

// Snapshot captures the current state of the product
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.ID,
		Article:     p.article,
		Title:       p.title,
		URL:         p.url,
		Parameters:  p.parameters,
		Description: p.description,
		Price:       p.price,
		Category:    p.category,
		Photo:       p.photo,
	}
}

// ProductFromSnapshot rebuilds a product through its setters.
// A missing article stays unset instead of being regenerated.
func ProductFromSnapshot(s ProductSnapshot) *Product {
	p := NewProduct()
	p.ID = s.ID
	if s.Article > 0 {
		p.SetArticle(s.Article)
	}
	p.SetTitle(s.Title)
	p.SetURL(s.URL)
	p.SetParameters(s.Parameters)
	p.SetDescription(s.Description)
	p.SetPrice(s.Price)
	p.SetCategory(s.Category)
	p.SetPhoto(s.Photo)
	return p
}
