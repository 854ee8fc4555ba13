package domain

// Photo is the picture attached to a product.
// It is saved, updated and removed together with its product.
type Photo struct {
	Model
	Title    string `json:"title" db:"title" validate:"max=255"`
	SmallURL string `json:"small_url,omitempty" db:"small_url" validate:"max=255"`
	LongURL  string `json:"long_url,omitempty" db:"long_url" validate:"max=255"`
}
