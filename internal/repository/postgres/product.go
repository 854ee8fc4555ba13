package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/coffee_catalog/internal/domain"
)

// Postgres error codes mapped onto domain errors
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var (
	categoryRelation  = mustRelation("category")
	photoRelation     = mustRelation("photo")
	positionsRelation = mustRelation("salePositions")

	insertProductQuery   = buildInsertProductQuery()
	updateProductQuery   = buildUpdateProductQuery()
	deletePositionsQuery = fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1", positionsRelation.Table, positionsRelation.MappedBy,
	)
	deletePhotoQuery = fmt.Sprintf("DELETE FROM %s WHERE id = $1", photoRelation.Table)
	upsertPhotoQuery = fmt.Sprintf(`
		INSERT INTO %s (id, title, small_url, long_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, small_url = EXCLUDED.small_url, long_url = EXCLUDED.long_url
	`, photoRelation.Table)
)

// ProductRepository implements domain.ProductRepository for PostgreSQL.
// Statements and cascades follow domain.ProductColumns and domain.ProductRelations.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// productRow is one products row joined with its category and photo
type productRow struct {
	ID                  uuid.UUID       `db:"id"`
	Article             int             `db:"article"`
	Title               string          `db:"title"`
	URL                 string          `db:"url"`
	Parameters          sql.NullString  `db:"parameters"`
	Description         sql.NullString  `db:"description"`
	Price               decimal.Decimal `db:"price"`
	CategoryID          uuid.NullUUID   `db:"category_id"`
	CategoryTitle       sql.NullString  `db:"category_title"`
	CategoryURL         sql.NullString  `db:"category_url"`
	CategoryDescription sql.NullString  `db:"category_description"`
	PhotoID             uuid.NullUUID   `db:"photo_id"`
	PhotoTitle          sql.NullString  `db:"photo_title"`
	PhotoSmallURL       sql.NullString  `db:"photo_small_url"`
	PhotoLongURL        sql.NullString  `db:"photo_long_url"`
}

// Create inserts the product and, by cascade, its photo in one transaction
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if product.IsNew() {
		product.ID = uuid.New()
		defer func() {
			if err != nil {
				product.ID = uuid.Nil
			}
		}()
	}

	if err = savePhoto(ctx, tx, product.Photo()); err != nil {
		return err
	}

	args := append([]any{product.ID}, productValues(product)...)
	if _, err = tx.ExecContext(ctx, insertProductQuery, args...); err != nil {
		return mapWriteError(err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a product with its category and photo
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT p.id, p.article, p.title, p.url, p.parameters, p.description, p.price,
			p.category_id, c.title AS category_title, c.url AS category_url,
			c.description AS category_description,
			p.photo_id, ph.title AS photo_title, ph.small_url AS photo_small_url,
			ph.long_url AS photo_long_url
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN photos ph ON ph.id = p.photo_id
		WHERE p.id = $1
	`

	var row productRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return row.toDomain(), nil
}

// Update stores product changes and, by cascade, its photo in one transaction
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err = savePhoto(ctx, tx, product.Photo()); err != nil {
		return err
	}

	args := append(productValues(product), product.ID)
	result, err := tx.ExecContext(ctx, updateProductQuery, args...)
	if err != nil {
		return mapWriteError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes the product together with its sale positions and photo
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var photoID uuid.NullUUID
	err = tx.GetContext(ctx, &photoID, `SELECT photo_id FROM products WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if positionsRelation.Cascade.Has(domain.CascadeRemove) {
		if _, err := tx.ExecContext(ctx, deletePositionsQuery, id); err != nil {
			return fmt.Errorf("failed to delete sale positions: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return err
	}

	// The product row referenced the photo, so it can only go afterwards.
	if photoID.Valid && photoRelation.Cascade.Has(domain.CascadeRemove) {
		if _, err := tx.ExecContext(ctx, deletePhotoQuery, photoID.UUID); err != nil {
			return fmt.Errorf("failed to delete photo: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SalePositions loads the sale positions of a product in creation order
func (r *ProductRepository) SalePositions(ctx context.Context, productID uuid.UUID) ([]*domain.SalePosition, error) {
	query := fmt.Sprintf(
		`SELECT id, %[2]s, number FROM %[1]s WHERE %[2]s = $1 ORDER BY created_at, id`,
		positionsRelation.Table, positionsRelation.MappedBy,
	)

	positions := []*domain.SalePosition{}
	if err := r.db.SelectContext(ctx, &positions, query, productID); err != nil {
		return nil, err
	}

	return positions, nil
}

// ExistsByArticle reports whether a product with the article is stored
func (r *ProductRepository) ExistsByArticle(ctx context.Context, article int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE article = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, article); err != nil {
		return false, err
	}

	return exists, nil
}

// savePhoto inserts a new photo or updates a stored one, as the photo cascade allows.
// A new photo gets its identifier here.
func savePhoto(ctx context.Context, tx *sqlx.Tx, photo *domain.Photo) error {
	if photo == nil {
		return nil
	}

	isNew := photo.IsNew()
	if isNew && !photoRelation.Cascade.Has(domain.CascadePersist) {
		return nil
	}
	if !isNew && !photoRelation.Cascade.Has(domain.CascadeMerge) {
		return nil
	}

	if isNew {
		photo.ID = uuid.New()
	}

	_, err := tx.ExecContext(ctx, upsertPhotoQuery,
		photo.ID,
		photo.Title,
		nullString(photo.SmallURL),
		nullString(photo.LongURL),
	)
	if err != nil {
		if isNew {
			photo.ID = uuid.Nil
		}
		return fmt.Errorf("failed to save photo: %w", err)
	}

	return nil
}

func mustRelation(field string) domain.Relation {
	relation, ok := domain.ProductRelation(field)
	if !ok {
		panic("postgres: no relation mapped for product field " + field)
	}
	return relation
}

// writeColumns lists the products columns written by insert and update
func writeColumns() []string {
	columns := make([]string, 0, len(domain.ProductColumns)+2)
	for _, c := range domain.ProductColumns {
		columns = append(columns, c.Name)
	}
	return append(columns, categoryRelation.JoinColumn, photoRelation.JoinColumn)
}

func buildInsertProductQuery() string {
	columns := append([]string{domain.ColumnID}, writeColumns()...)
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		domain.ProductTable, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)
}

func buildUpdateProductQuery() string {
	columns := writeColumns()
	assignments := make([]string, len(columns))
	for i, c := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		domain.ProductTable, strings.Join(assignments, ", "), domain.ColumnID, len(columns)+1,
	)
}

// productValues returns the values for writeColumns in the same order
func productValues(p *domain.Product) []any {
	values := make([]any, 0, len(domain.ProductColumns)+2)
	for _, c := range domain.ProductColumns {
		values = append(values, columnValue(p, c))
	}

	var categoryID, photoID uuid.NullUUID
	if c := p.Category(); c != nil && !c.IsNew() {
		categoryID = uuid.NullUUID{UUID: c.ID, Valid: true}
	}
	if ph := p.Photo(); ph != nil && !ph.IsNew() {
		photoID = uuid.NullUUID{UUID: ph.ID, Valid: true}
	}

	return append(values, categoryID, photoID)
}

func columnValue(p *domain.Product, c domain.Column) any {
	var text string
	switch c.Name {
	case domain.ColumnArticle:
		return p.Article()
	case domain.ColumnPrice:
		return decimal.NewFromFloat(p.Price()).Round(2)
	case domain.ColumnTitle:
		text = p.Title()
	case domain.ColumnURL:
		text = p.URL()
	case domain.ColumnParameters:
		text = p.Parameters()
	case domain.ColumnDescription:
		text = p.Description()
	}

	if c.Nullable {
		return nullString(text)
	}
	return text
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, pqErr.Detail)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pqErr.Detail)
		}
	}
	return err
}

func (row *productRow) toDomain() *domain.Product {
	p := domain.NewProduct()
	p.ID = row.ID
	if row.Article > 0 {
		p.SetArticle(row.Article)
	}
	p.SetTitle(row.Title)
	p.SetURL(row.URL)
	p.SetParameters(row.Parameters.String)
	p.SetDescription(row.Description.String)
	price, _ := row.Price.Float64()
	p.SetPrice(price)

	if row.CategoryID.Valid {
		p.SetCategory(&domain.Category{
			Model:       domain.Model{ID: row.CategoryID.UUID},
			Title:       row.CategoryTitle.String,
			URL:         row.CategoryURL.String,
			Description: row.CategoryDescription.String,
		})
	}

	if row.PhotoID.Valid {
		p.SetPhoto(&domain.Photo{
			Model:    domain.Model{ID: row.PhotoID.UUID},
			Title:    row.PhotoTitle.String,
			SmallURL: row.PhotoSmallURL.String,
			LongURL:  row.PhotoLongURL.String,
		})
	}

	return p
}
