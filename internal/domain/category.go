package domain

// Category groups products. Many products reference one category;
// a product never manages its category's lifecycle.
type Category struct {
	Model
	Title       string `json:"title" db:"title"`
	URL         string `json:"url" db:"url"`
	Description string `json:"description,omitempty" db:"description"`
}
