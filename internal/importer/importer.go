package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Pesokrava/coffee_catalog/internal/domain"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/validator"
)

// Catalog is the layout of a catalog seed file
type Catalog struct {
	Products []Record `yaml:"products" validate:"dive"`
}

// Record is one product entry of a seed file. Article may be omitted
// to let the catalog assign one.
type Record struct {
	Article     int          `yaml:"article" validate:"gte=0"`
	Title       string       `yaml:"title" validate:"required,max=255"`
	URL         string       `yaml:"url" validate:"required,max=255"`
	Parameters  string       `yaml:"parameters"`
	Description string       `yaml:"description"`
	Price       float64      `yaml:"price" validate:"gte=0"`
	CategoryID  string       `yaml:"category_id" validate:"omitempty,uuid"`
	Photo       *PhotoRecord `yaml:"photo"`
}

// PhotoRecord describes the photo stored with an imported product
type PhotoRecord struct {
	Title    string `yaml:"title" validate:"required,max=255"`
	SmallURL string `yaml:"small_url" validate:"max=255"`
	LongURL  string `yaml:"long_url" validate:"max=255"`
}

// Creator stores new products
type Creator interface {
	Create(ctx context.Context, product *domain.Product) error
}

// Result summarizes an import run
type Result struct {
	Created int
	Skipped int
}

// Parse decodes and validates a catalog seed file
func Parse(r io.Reader) (*Catalog, error) {
	var catalog Catalog
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return &catalog, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := validator.Get().Struct(&catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return &catalog, nil
}

// Product builds a product from the record through the entity setters
func (rec Record) Product() *domain.Product {
	p := domain.NewProduct()
	if rec.Article > 0 {
		p.SetArticle(rec.Article)
	}
	p.SetTitle(rec.Title)
	p.SetURL(rec.URL)
	p.SetParameters(rec.Parameters)
	p.SetDescription(rec.Description)
	p.SetPrice(rec.Price)

	if rec.CategoryID != "" {
		// Validated as a UUID by Parse.
		p.SetCategory(&domain.Category{Model: domain.Model{ID: uuid.MustParse(rec.CategoryID)}})
	}
	if rec.Photo != nil {
		p.SetPhoto(&domain.Photo{
			Title:    rec.Photo.Title,
			SmallURL: rec.Photo.SmallURL,
			LongURL:  rec.Photo.LongURL,
		})
	}

	return p
}

// Importer creates every product of a catalog
type Importer struct {
	creator Creator
	logger  *logger.Logger
}

// New creates an importer writing through creator
func New(creator Creator, log *logger.Logger) *Importer {
	return &Importer{creator: creator, logger: log}
}

// Import creates the catalog's products in file order. Products that already
// exist are skipped; any other failure stops the run.
func (im *Importer) Import(ctx context.Context, catalog *Catalog) (Result, error) {
	var result Result

	for i, rec := range catalog.Products {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		product := rec.Product()
		err := im.creator.Create(ctx, product)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, domain.ErrAlreadyExists):
			result.Skipped++
			im.logger.Warnf("Skipping product #%d %q: already exists", i+1, rec.Title)
		default:
			return result, fmt.Errorf("failed to import product #%d %q: %w", i+1, rec.Title, err)
		}
	}

	im.logger.WithFields(map[string]interface{}{
		"created": result.Created,
		"skipped": result.Skipped,
	}).Info("Catalog import finished")

	return result, nil
}
