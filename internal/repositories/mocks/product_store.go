// Package mocks holds hand-written testify doubles for the repository layer.
package mocks

import (
	"context"

	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ProductStore struct {
	mock.Mock
}

func (m *ProductStore) ListProducts(ctx context.Context, filter models.ProductFilter, page, size int) ([]*models.Product, int, error) {
	args := m.Called(ctx, filter, page, size)

	var products []*models.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]*models.Product)
	}

	return products, args.Int(1), args.Error(2)
}

func (m *ProductStore) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductStore) CategoryCounts(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)

	var counts map[string]int
	if args.Get(0) != nil {
		counts = args.Get(0).(map[string]int)
	}

	return counts, args.Error(1)
}

func (m *ProductStore) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)

	return args.Error(0)
}

func (m *ProductStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)

	return args.Error(0)
}

func (m *ProductStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *ProductStore) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	args := m.Called(ctx, id, archived)

	return args.Error(0)
}
