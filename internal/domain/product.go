package domain

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/google/uuid"
)

const (
	// articleDigits is the alphabet article codes are drawn from
	articleDigits = "1234567890"

	// articleLength is the number of digits in a generated article code
	articleLength = 5

	// Currency is appended to rendered prices
	Currency = "UAH"
)

// Product is a catalog item. Its setters never fail: invalid input is
// normalized to a safe default instead of being rejected.
type Product struct {
	Model

	article       int
	title         string
	url           string
	parameters    string
	description   string
	price         float64
	category      *Category
	photo         *Photo
	salePositions []*SalePosition
}

// NewProduct returns a product with every field at its default
func NewProduct() *Product {
	return &Product{
		salePositions: []*SalePosition{},
	}
}

// NewArticle replaces the article with a random 5-digit code
func (p *Product) NewArticle() {
	var sb strings.Builder
	sb.Grow(articleLength)
	for i := 0; i < articleLength; i++ {
		sb.WriteByte(articleDigits[rand.Intn(len(articleDigits))])
	}
	// Only digits were written, so parsing cannot fail.
	p.article, _ = strconv.Atoi(sb.String())
}

// Article returns the product article code
func (p *Product) Article() int {
	return p.article
}

// SetArticle stores a positive article as is and generates a new one otherwise
func (p *Product) SetArticle(article int) {
	if article > 0 {
		p.article = article
		return
	}
	p.NewArticle()
}

// Title returns the product title
func (p *Product) Title() string {
	return p.title
}

// SetTitle sets the title, empty input becomes ""
func (p *Product) SetTitle(title string) {
	p.title = nonEmptyOr(title, "")
}

// URL returns the product page slug
func (p *Product) URL() string {
	return p.url
}

// SetURL sets the page slug, empty input becomes ""
func (p *Product) SetURL(url string) {
	p.url = nonEmptyOr(url, "")
}

// Parameters returns the technical parameters
func (p *Product) Parameters() string {
	return p.parameters
}

// SetParameters sets the technical parameters, empty input becomes ""
func (p *Product) SetParameters(parameters string) {
	p.parameters = nonEmptyOr(parameters, "")
}

// Description returns the product description
func (p *Product) Description() string {
	return p.description
}

// SetDescription sets the description, empty input becomes ""
func (p *Product) SetDescription(description string) {
	p.description = nonEmptyOr(description, "")
}

// Price returns the product price
func (p *Product) Price() float64 {
	return p.price
}

// SetPrice stores a positive price as is, anything else becomes 0
func (p *Product) SetPrice(price float64) {
	if price > 0 {
		p.price = price
		return
	}
	p.price = 0
}

// Category returns the product category, nil when unset
func (p *Product) Category() *Category {
	return p.category
}

// SetCategory assigns the category reference
func (p *Product) SetCategory(category *Category) {
	p.category = category
}

// Photo returns the product photo, nil when unset
func (p *Product) Photo() *Photo {
	return p.photo
}

// SetPhoto assigns the photo reference
func (p *Product) SetPhoto(photo *Photo) {
	p.photo = photo
}

// SalePositions returns the sale positions referencing this product
func (p *Product) SalePositions() []*SalePosition {
	return p.salePositions
}

// SetSalePositions replaces the sale positions with a copy of the given slice
func (p *Product) SetSalePositions(positions []*SalePosition) {
	if positions == nil {
		p.salePositions = []*SalePosition{}
		return
	}
	p.salePositions = slices.Clone(positions)
}

// String renders a multi-line summary of the product
func (p *Product) String() string {
	var sb strings.Builder
	sb.WriteString("Title: ")
	sb.WriteString(p.title)
	sb.WriteString("\nParameters: ")
	sb.WriteString(p.parameters)
	sb.WriteString("\nDescription: ")
	sb.WriteString(p.description)
	sb.WriteString("\nPrice = ")
	sb.WriteString(FormatPrice(p.price))
	sb.WriteString(" ")
	sb.WriteString(Currency)
	if p.category != nil {
		sb.WriteString("\nCategory: ")
		sb.WriteString(p.category.Title)
	}
	return sb.String()
}

// Equal reports whether two products share identity, article, price and texts.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	if !p.Model.Equal(other.Model) {
		return false
	}
	return p.article == other.article &&
		p.price == other.price &&
		p.title == other.title &&
		p.url == other.url &&
		p.parameters == other.parameters &&
		p.description == other.description
}

// Hash combines every field compared by Equal except the identity.
// Equal products always hash to the same value.
func (p *Product) Hash() int32 {
	result := int32(p.article)
	result = 31*result + stringHash(p.title)
	result = 31*result + stringHash(p.url)
	result = 31*result + stringHash(p.parameters)
	result = 31*result + stringHash(p.description)
	bits := math.Float64bits(p.price)
	result = 31*result + int32(bits^(bits>>32))
	return result
}

// FormatPrice renders a price with at least one fractional digit (45 -> "45.0").
// Very small and very large values switch to exponent form (1.0E7).
func FormatPrice(price float64) string {
	abs := math.Abs(price)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(price, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(price, 'E', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mantissa + "E" + strconv.Itoa(n)
}

// nonEmptyOr returns value unless it is empty. Whitespace-only values are kept.
func nonEmptyOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// stringHash is the 31-based polynomial hash over UTF-16 code units
func stringHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(unit)
	}
	return h
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create stores a new product together with its photo
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product with its category and photo
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Update stores product changes together with its photo
	Update(ctx context.Context, product *Product) error

	// Delete removes a product, its photo and its sale positions
	Delete(ctx context.Context, id uuid.UUID) error

	// SalePositions loads the sale positions referencing a product
	SalePositions(ctx context.Context, productID uuid.UUID) ([]*SalePosition, error)

	// ExistsByArticle reports whether any product already uses the article
	ExistsByArticle(ctx context.Context, article int) (bool, error)
}
