package models

// CatalogSections are the bounded storefront shelves: latest arrivals plus a
// recommendation slice. Archived records never appear in either.
type CatalogSections struct {
	NewProducts         []*Product `json:"new_products"`
	RecommendedProducts []*Product `json:"recommended_products"`
}
