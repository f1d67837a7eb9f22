package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/bulkmart/catalog-platform/internal/errors"
	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/google/uuid"
)

// FallbackStore serves a fixed in-process snapshot of sample records when the
// backing store is unreachable. The snapshot is read-only and safe for
// concurrent use; every write fails explicitly instead of silently no-opping.
type FallbackStore struct {
	products []*models.Product
}

func NewFallbackStore() *FallbackStore {
	return &FallbackStore{products: sampleProducts()}
}

func (f *FallbackStore) ListProducts(ctx context.Context, filter models.ProductFilter, page, size int) ([]*models.Product, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}

	var matched []*models.Product

	for _, product := range f.products {
		if product.IsArchived {
			continue
		}

		if filter.HasCategory() && product.Category != filter.Category {
			continue
		}

		if filter.NameContains != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.NameContains)) {
			continue
		}

		matched = append(matched, product)
	}

	// most-recently-created first, same order as the backing store
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	offset := (page - 1) * size
	if offset >= total {
		return []*models.Product{}, total, nil
	}

	end := offset + size
	if end > total {
		end = total
	}

	pageRecords := make([]*models.Product, 0, end-offset)
	for _, product := range matched[offset:end] {
		pageRecords = append(pageRecords, cloneProduct(product))
	}

	return pageRecords, total, nil
}

func (f *FallbackStore) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, product := range f.products {
		if product.ID == id && !product.IsArchived {
			return cloneProduct(product), nil
		}
	}

	return nil, nil
}

func (f *FallbackStore) CategoryCounts(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)

	for _, product := range f.products {
		if !product.IsArchived {
			counts[product.Category]++
		}
	}

	return counts, nil
}

func (f *FallbackStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return errors.UnsupportedError("fallback store is read-only: create is not supported")
}

func (f *FallbackStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	return errors.UnsupportedError("fallback store is read-only: update is not supported")
}

func (f *FallbackStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return errors.UnsupportedError("fallback store is read-only: delete is not supported")
}

func (f *FallbackStore) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	return errors.UnsupportedError("fallback store is read-only: archive is not supported")
}

// cloneProduct keeps callers from mutating the shared snapshot.
func cloneProduct(product *models.Product) *models.Product {
	clone := *product
	clone.Images = append([]string(nil), product.Images...)
	clone.PriceRanges = append([]models.PriceRange(nil), product.PriceRanges...)
	clone.Specifications = append([]string(nil), product.Specifications...)

	return &clone
}
