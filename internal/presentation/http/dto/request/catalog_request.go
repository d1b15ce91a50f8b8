package request

// CatalogFilterRequest represents catalog filter parameters
type CatalogFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
