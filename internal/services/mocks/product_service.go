// Package mocks holds hand-written testify doubles for the service layer.
package mocks

import (
	"context"

	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ProductService struct {
	mock.Mock
}

func (m *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) (*models.PaginatedResponse, error) {
	args := m.Called(ctx, filter, page, pageSize)

	var resp *models.PaginatedResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*models.PaginatedResponse)
	}

	return resp, args.Error(1)
}

func (m *ProductService) Browse(ctx context.Context, req *models.BrowseRequest) (*models.BrowseResponse, error) {
	args := m.Called(ctx, req)

	var resp *models.BrowseResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*models.BrowseResponse)
	}

	return resp, args.Error(1)
}

func (m *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductService) CategoryCounts(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)

	var counts map[string]int
	if args.Get(0) != nil {
		counts = args.Get(0).(map[string]int)
	}

	return counts, args.Error(1)
}

func (m *ProductService) Sections(ctx context.Context) (*models.CatalogSections, error) {
	args := m.Called(ctx)

	var sections *models.CatalogSections
	if args.Get(0) != nil {
		sections = args.Get(0).(*models.CatalogSections)
	}

	return sections, args.Error(1)
}

func (m *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, req)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, id, req)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *ProductService) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	args := m.Called(ctx, id, archived)

	return args.Error(0)
}
