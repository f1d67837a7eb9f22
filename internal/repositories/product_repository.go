package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/bulkmart/catalog-platform/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductStore {
	return &productRepository{DB: db}
}

// buildListFilter returns the WHERE clause and its args for customer-facing
// listing queries. Archived records never leave this boundary.
func buildListFilter(filter models.ProductFilter) (string, []any) {
	where := "WHERE is_archived = FALSE"

	var args []any

	if filter.HasCategory() {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	if filter.NameContains != "" {
		args = append(args, "%"+filter.NameContains+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	return where, args
}

func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if page < 1 {
		page = 1
	}

	where, args := buildListFilter(filter)

	var total int

	countQuery := "SELECT COUNT(*) FROM products " + where

	err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Offset
	offset := (page - 1) * size

	args = append(args, size, offset)
	query := fmt.Sprintf(`
		SELECT id, name, description, category, min_order, is_archived, created_at, updated_at
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var products []*models.Product

	byID := make(map[uuid.UUID]*models.Product)

	var ids []string

	for rows.Next() {
		product := &models.Product{}

		err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Category, &product.MinOrder, &product.IsArchived, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}

		products = append(products, product)
		byID[product.ID] = product
		ids = append(ids, product.ID.String())
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(products) == 0 {
		return products, total, nil
	}

	if err := r.loadChildren(dbCtx, byID, ids); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// loadChildren hydrates images, price ranges and specifications for the given
// page of products in three batched queries.
func (r *productRepository) loadChildren(ctx context.Context, byID map[uuid.UUID]*models.Product, ids []string) error {

	imageQuery := `
		SELECT product_id, image_url
		FROM product_images
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, display_order
	`

	imageRows, err := r.DB.QueryContext(ctx, imageQuery, pq.Array(ids))
	if err != nil {
		return err
	}

	defer imageRows.Close()

	for imageRows.Next() {
		var productID uuid.UUID

		var imageURL string

		if err := imageRows.Scan(&productID, &imageURL); err != nil {
			return err
		}

		if product, ok := byID[productID]; ok {
			product.Images = append(product.Images, imageURL)
		}
	}

	if err := imageRows.Err(); err != nil {
		return err
	}

	rangeQuery := `
		SELECT product_id, min_quantity, max_quantity, price
		FROM price_ranges
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, min_quantity
	`

	rangeRows, err := r.DB.QueryContext(ctx, rangeQuery, pq.Array(ids))
	if err != nil {
		return err
	}

	defer rangeRows.Close()

	for rangeRows.Next() {
		var productID uuid.UUID

		var priceRange models.PriceRange

		if err := rangeRows.Scan(&productID, &priceRange.MinQuantity, &priceRange.MaxQuantity, &priceRange.Price); err != nil {
			return err
		}

		if product, ok := byID[productID]; ok {
			product.PriceRanges = append(product.PriceRanges, priceRange)
		}
	}

	if err := rangeRows.Err(); err != nil {
		return err
	}

	specQuery := `
		SELECT product_id, specification
		FROM product_specifications
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, display_order
	`

	specRows, err := r.DB.QueryContext(ctx, specQuery, pq.Array(ids))
	if err != nil {
		return err
	}

	defer specRows.Close()

	for specRows.Next() {
		var productID uuid.UUID

		var specification string

		if err := specRows.Scan(&productID, &specification); err != nil {
			return err
		}

		if product, ok := byID[productID]; ok {
			product.Specifications = append(product.Specifications, specification)
		}
	}

	return specRows.Err()
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
		SELECT id, name, description, category, min_order, is_archived, created_at, updated_at
		FROM products
		WHERE id = $1 AND is_archived = FALSE
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&product.ID, &product.Name, &product.Description, &product.Category, &product.MinOrder, &product.IsArchived, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	byID := map[uuid.UUID]*models.Product{product.ID: product}

	if err := r.loadChildren(dbCtx, byID, []string{product.ID.String()}); err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) CategoryCounts(ctx context.Context) (map[string]int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT category, COUNT(*) FROM products WHERE is_archived = FALSE GROUP BY category`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	counts := make(map[string]int)

	for rows.Next() {
		var category string

		var count int

		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}

		counts[category] = count
	}

	return counts, rows.Err()
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	query := `
		INSERT INTO products (id, name, description, category, min_order, is_archived)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, product.ID, product.Name, product.Description, product.Category, product.MinOrder, product.IsArchived).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertChildren(dbCtx, tx, product); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateProduct replaces the whole record: the product row is updated and the
// child collections are deleted and reinserted inside one transaction.
func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	query := `
		UPDATE products SET name = $1, description = $2, category = $3, min_order = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, product.Name, product.Description, product.Category, product.MinOrder, product.ID).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return err
	}

	for _, table := range []string{"product_images", "price_ranges", "product_specifications"} {
		if _, err := tx.ExecContext(dbCtx, fmt.Sprintf("DELETE FROM %s WHERE product_id = $1", table), product.ID); err != nil {
			return err
		}
	}

	if err := insertChildren(dbCtx, tx, product); err != nil {
		return err
	}

	return tx.Commit()
}

func insertChildren(ctx context.Context, tx *sql.Tx, product *models.Product) error {

	imageQuery := `
		INSERT INTO product_images (id, product_id, image_url, display_order)
		VALUES ($1, $2, $3, $4)
	`

	for i, imageURL := range product.Images {
		if _, err := tx.ExecContext(ctx, imageQuery, uuid.New(), product.ID, imageURL, i); err != nil {
			return err
		}
	}

	rangeQuery := `
		INSERT INTO price_ranges (id, product_id, min_quantity, max_quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, priceRange := range product.PriceRanges {
		if _, err := tx.ExecContext(ctx, rangeQuery, uuid.New(), product.ID, priceRange.MinQuantity, priceRange.MaxQuantity, priceRange.Price); err != nil {
			return err
		}
	}

	specQuery := `
		INSERT INTO product_specifications (id, product_id, specification, display_order)
		VALUES ($1, $2, $3, $4)
	`

	for i, specification := range product.Specifications {
		if _, err := tx.ExecContext(ctx, specQuery, uuid.New(), product.ID, specification, i); err != nil {
			return err
		}
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// children cascade via FK
	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *productRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `UPDATE products SET is_archived = $2, updated_at = NOW() WHERE id = $1`, id, archived)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
