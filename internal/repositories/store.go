package repository

import (
	"context"

	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/google/uuid"
)

// ProductReader is the read surface shared by the remote backing store and
// the in-process fallback snapshot. ListProducts returns the page's rows plus
// the total number of matching records; a negative total means the store
// cannot count. Missing records come back as (nil, nil), never as an error.
type ProductReader interface {
	ListProducts(ctx context.Context, filter models.ProductFilter, page, size int) ([]*models.Product, int, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CategoryCounts(ctx context.Context) (map[string]int, error)
}

// ProductStore adds the write surface. The fallback snapshot implements it
// only to fail writes explicitly.
type ProductStore interface {
	ProductReader

	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
}

type UserRoleRepository interface {
	GetRole(ctx context.Context, userID uuid.UUID) (string, error)
}
