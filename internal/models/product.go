package models

import (
	"time"

	"github.com/google/uuid"
)

// Catalog categories known at write time. Listing queries accept any value,
// so new categories only need an entry here.
var Categories = []string{
	"GROCERIES",
	"BEAUTY",
	"ELECTRONICS",
	"HOME APPLIANCES",
}

func IsKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}

	return false
}

// quantity band with its unit price; bands are ascending and non-overlapping
type PriceRange struct {
	MinQuantity int     `json:"min_quantity"`
	MaxQuantity int     `json:"max_quantity"`
	Price       float64 `json:"price"`
}

type Product struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	MinOrder       int          `json:"min_order"`
	IsArchived     bool         `json:"is_archived"`
	Images         []string     `json:"images"`
	PriceRanges    []PriceRange `json:"price_ranges"`
	Specifications []string     `json:"specifications"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type PriceRangeInput struct {
	MinQuantity int     `json:"min_quantity" validate:"required,gt=0"`
	MaxQuantity int     `json:"max_quantity" validate:"required,gtfield=MinQuantity"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

type CreateProductRequest struct {
	Name           string            `json:"name" validate:"required,min=3,max=200"`
	Description    string            `json:"description" validate:"required"`
	Category       string            `json:"category" validate:"required"`
	MinOrder       int               `json:"min_order" validate:"omitempty,gt=0"`
	Images         []string          `json:"images" validate:"required,min=1,dive,url,startswith=http://|startswith=https://"`
	PriceRanges    []PriceRangeInput `json:"price_ranges" validate:"required,min=1,dive"`
	Specifications []string          `json:"specifications" validate:"omitempty,dive,required"`
}

// Updates replace the whole record: the payload carries every field, and the
// child collections (images, price ranges, specifications) are deleted and
// reinserted rather than diffed.
type UpdateProductRequest struct {
	Name           string            `json:"name" validate:"required,min=3,max=200"`
	Description    string            `json:"description" validate:"required"`
	Category       string            `json:"category" validate:"required"`
	MinOrder       int               `json:"min_order" validate:"omitempty,gt=0"`
	Images         []string          `json:"images" validate:"required,min=1,dive,url,startswith=http://|startswith=https://"`
	PriceRanges    []PriceRangeInput `json:"price_ranges" validate:"required,min=1,dive"`
	Specifications []string          `json:"specifications" validate:"omitempty,dive,required"`
}

type ArchiveRequest struct {
	IsArchived bool `json:"is_archived"`
}

// filters for customer-facing listing queries; archived records are always excluded
type ProductFilter struct {
	Category     string // empty or "all" means no category filter
	NameContains string // case-insensitive substring match on name
}

func (f ProductFilter) HasCategory() bool {
	return f.Category != "" && f.Category != "all"
}
