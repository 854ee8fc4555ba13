package domain

// Storage mapping for products. The entity never reads these values;
// the persistence adapter builds its statements and cascades from them.

// ProductTable is the table products are stored in
const ProductTable = "products"

// Product column names
const (
	ColumnID          = "id"
	ColumnArticle     = "article"
	ColumnTitle       = "title"
	ColumnURL         = "url"
	ColumnParameters  = "parameters"
	ColumnDescription = "description"
	ColumnPrice       = "price"
	ColumnCategoryID  = "category_id"
	ColumnPhotoID     = "photo_id"
)

// Column describes how one product attribute is stored
type Column struct {
	Field    string
	Name     string
	Nullable bool
	// Unique columns identify a product; a clash on insert means it already exists.
	Unique bool
}

// ProductColumns lists the scalar product attributes in storage order
var ProductColumns = []Column{
	{Field: "article", Name: ColumnArticle, Unique: true},
	{Field: "title", Name: ColumnTitle},
	{Field: "url", Name: ColumnURL, Unique: true},
	{Field: "parameters", Name: ColumnParameters, Nullable: true},
	{Field: "description", Name: ColumnDescription, Nullable: true},
	{Field: "price", Name: ColumnPrice},
}

// Cascade tells the adapter which operations follow the product to a related record
type Cascade uint8

const (
	CascadePersist Cascade = 1 << iota
	CascadeMerge
	CascadeRemove

	CascadeNone Cascade = 0
	CascadeAll          = CascadePersist | CascadeMerge | CascadeRemove
)

// Has reports whether c includes every operation in op
func (c Cascade) Has(op Cascade) bool {
	return op != CascadeNone && c&op == op
}

// Fetch tells the adapter when a relation is loaded
type Fetch uint8

const (
	// FetchEager loads the relation together with the product
	FetchEager Fetch = iota
	// FetchLazy loads the relation on explicit request
	FetchLazy
)

// Relation describes a reference from a product to another record
type Relation struct {
	Field string
	Table string
	// JoinColumn is the foreign key column in the products table.
	// Empty for reverse collections, which use MappedBy instead.
	JoinColumn string
	MappedBy   string
	Cascade    Cascade
	Fetch      Fetch
}

// ProductRelations lists the references a product holds
var ProductRelations = []Relation{
	{Field: "category", Table: "categories", JoinColumn: ColumnCategoryID, Cascade: CascadeNone, Fetch: FetchEager},
	{Field: "photo", Table: "photos", JoinColumn: ColumnPhotoID, Cascade: CascadeAll, Fetch: FetchEager},
	{Field: "salePositions", Table: "sale_positions", MappedBy: "product_id", Cascade: CascadeRemove, Fetch: FetchLazy},
}

// ProductRelation returns the relation mapped for a product field
func ProductRelation(field string) (Relation, bool) {
	for _, r := range ProductRelations {
		if r.Field == field {
			return r, true
		}
	}
	return Relation{}, false
}
