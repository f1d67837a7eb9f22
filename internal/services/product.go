package service

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bulkmart/catalog-platform/internal/api/middleware"
	"github.com/bulkmart/catalog-platform/internal/cache"
	"github.com/bulkmart/catalog-platform/internal/errors"
	"github.com/bulkmart/catalog-platform/internal/metrics"
	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/bulkmart/catalog-platform/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ProductService interface {
	ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) (*models.PaginatedResponse, error)
	Browse(ctx context.Context, req *models.BrowseRequest) (*models.BrowseResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CategoryCounts(ctx context.Context) (map[string]int, error)
	Sections(ctx context.Context) (*models.CatalogSections, error)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
}

type productService struct {
	provider    StoreProvider
	roles       repositoryRoleReader
	cache       cache.Cache
	browser     *CatalogBrowser
	sanitizer   *bluemonday.Policy
	validate    *validator.Validate
	pageSize    int
	sectionSize int
}

// narrow alias so tests can hand in a mock without the full repository package
type repositoryRoleReader interface {
	GetRole(ctx context.Context, userID uuid.UUID) (string, error)
}

func NewProductService(provider StoreProvider, roles repositoryRoleReader, c cache.Cache, pageSize, sectionSize int) ProductService {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	if sectionSize < 1 {
		sectionSize = 8
	}

	return &productService{
		provider:    provider,
		roles:       roles,
		cache:       c,
		browser:     NewCatalogBrowser(provider, pageSize, sessionIdleTTL),
		sanitizer:   bluemonday.StrictPolicy(),
		validate:    validator.New(),
		pageSize:    pageSize,
		sectionSize: sectionSize,
	}
}

// page means "page number requested"
// pageSize means "number of products to be displayed per page"
func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) (*models.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = s.pageSize
	}

	// cap the LIMIT a client can request in one page
	if max := s.pageSize * 4; pageSize > max {
		pageSize = max
	}

	reader := s.provider.Reader(ctx)
	providerName := s.provider.Provider()

	products, total, err := reader.ListProducts(ctx, filter, page, pageSize)

	metrics.ObserveCatalogQuery(providerName, err)

	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	hasMore := hasMoreFrom(total, page, pageSize, len(products))

	return &models.PaginatedResponse{
		Data:     products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore,
	}, nil
}

// Browse serves the session-scoped, accumulating listing. Unlike
// ListProducts, repeated calls with the same session id keep earlier pages and
// de-duplicate records across loads.
func (s *productService) Browse(ctx context.Context, req *models.BrowseRequest) (*models.BrowseResponse, error) {
	return s.browser.Browse(ctx, req)
}

// GetProduct returns nil (not an error) when the record does not exist.
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)

	cacheKey := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product

	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		logger.Warn("Product cache lookup failed", slog.String("error", err.Error()))
	} else if found {
		return &cached, nil
	}

	product, err := s.provider.Reader(ctx).GetProductByID(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if product == nil {
		return nil, nil
	}

	if err := s.cache.Set(ctx, cacheKey, product, 0); err != nil {
		logger.Warn("Product cache store failed", slog.String("error", err.Error()))
	}

	return product, nil
}

func (s *productService) CategoryCounts(ctx context.Context) (map[string]int, error) {
	logger := middleware.LoggerFromContext(ctx)

	var cached map[string]int

	if found, err := s.cache.Get(ctx, cache.CategoryCountsKey, &cached); err != nil {
		logger.Warn("Category counts cache lookup failed", slog.String("error", err.Error()))
	} else if found {
		return cached, nil
	}

	counts, err := s.provider.Reader(ctx).CategoryCounts(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch category counts").WithError(err)
	}

	if err := s.cache.Set(ctx, cache.CategoryCountsKey, counts, 0); err != nil {
		logger.Warn("Category counts cache store failed", slog.String("error", err.Error()))
	}

	return counts, nil
}

// Sections returns the storefront shelves: the newest records and, as a
// recommendation placeholder, the slice right after them.
func (s *productService) Sections(ctx context.Context) (*models.CatalogSections, error) {
	logger := middleware.LoggerFromContext(ctx)

	var cached models.CatalogSections

	if found, err := s.cache.Get(ctx, cache.SectionsKey, &cached); err != nil {
		logger.Warn("Sections cache lookup failed", slog.String("error", err.Error()))
	} else if found {
		return &cached, nil
	}

	reader := s.provider.Reader(ctx)

	newest, _, err := reader.ListProducts(ctx, models.ProductFilter{}, 1, s.sectionSize)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch catalog sections").WithError(err)
	}

	recommended, _, err := reader.ListProducts(ctx, models.ProductFilter{}, 2, s.sectionSize)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch catalog sections").WithError(err)
	}

	sections := &models.CatalogSections{
		NewProducts:         newest,
		RecommendedProducts: recommended,
	}

	if err := s.cache.Set(ctx, cache.SectionsKey, sections, 5*time.Minute); err != nil {
		logger.Warn("Sections cache store failed", slog.String("error", err.Error()))
	}

	return sections, nil
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if _, err := s.authorize(ctx, false); err != nil {
		return nil, err
	}

	s.sanitizeFields(&req.Name, &req.Description, req.Specifications)

	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	if err := validateCatalogRules(req.Category, req.PriceRanges); err != nil {
		return nil, err
	}

	writer, err := s.provider.Writer(ctx)
	if err != nil {
		return nil, err
	}

	minOrder := req.MinOrder
	if minOrder < 1 {
		minOrder = 1
	}

	product := &models.Product{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		MinOrder:       minOrder,
		IsArchived:     false,
		Images:         req.Images,
		PriceRanges:    toPriceRanges(req.PriceRanges),
		Specifications: req.Specifications,
	}

	if err := writer.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	s.invalidateListings(ctx)

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	if _, err := s.authorize(ctx, false); err != nil {
		return nil, err
	}

	s.sanitizeFields(&req.Name, &req.Description, req.Specifications)

	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	if err := validateCatalogRules(req.Category, req.PriceRanges); err != nil {
		return nil, err
	}

	writer, err := s.provider.Writer(ctx)
	if err != nil {
		return nil, err
	}

	minOrder := req.MinOrder
	if minOrder < 1 {
		minOrder = 1
	}

	product := &models.Product{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		MinOrder:       minOrder,
		Images:         req.Images,
		PriceRanges:    toPriceRanges(req.PriceRanges),
		Specifications: req.Specifications,
	}

	if err := writer.UpdateProduct(ctx, product); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found")
		}

		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidateProduct(ctx, id)
	s.invalidateListings(ctx)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.authorize(ctx, true); err != nil {
		return err
	}

	writer, err := s.provider.Writer(ctx)
	if err != nil {
		return err
	}

	if err := writer.DeleteProduct(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found")
		}

		return errors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidateProduct(ctx, id)
	s.invalidateListings(ctx)

	return nil
}

// SetArchived soft-hides or restores a record. Archiving is idempotent.
func (s *productService) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	if _, err := s.authorize(ctx, false); err != nil {
		return err
	}

	writer, err := s.provider.Writer(ctx)
	if err != nil {
		return err
	}

	if err := writer.SetArchived(ctx, id, archived); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found")
		}

		return errors.DatabaseError("Failed to change archive state").WithError(err)
	}

	s.invalidateProduct(ctx, id)
	s.invalidateListings(ctx)

	return nil
}

// authorize checks the caller's role before any write is attempted. Catalog
// writes need ADMIN or EDITOR; destructive operations need ADMIN.
func (s *productService) authorize(ctx context.Context, needAdmin bool) (*models.Claims, error) {
	claims := middleware.ClaimsFromContext(ctx)
	if claims == nil {
		return nil, errors.UnauthorizedError("Authentication required")
	}

	role, err := s.roles.GetRole(ctx, claims.UserID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to resolve user role").WithError(err)
	}

	if needAdmin {
		if role != models.RoleAdmin {
			return nil, errors.ForbiddenError("Admin access required")
		}

		return claims, nil
	}

	if !models.CanWriteCatalog(role) {
		return nil, errors.ForbiddenError("Admin or editor access required")
	}

	return claims, nil
}

func (s *productService) sanitizeFields(name, description *string, specifications []string) {
	*name = strings.TrimSpace(s.sanitizer.Sanitize(*name))
	*description = strings.TrimSpace(s.sanitizer.Sanitize(*description))

	for i, spec := range specifications {
		specifications[i] = strings.TrimSpace(s.sanitizer.Sanitize(spec))
	}
}

// validateCatalogRules covers the cross-field constraints the struct tags
// cannot express: the category must be known, and price ranges must ascend
// without overlapping.
func validateCatalogRules(category string, ranges []models.PriceRangeInput) error {
	if !models.IsKnownCategory(category) {
		return errors.AddValidationError("category",
			fmt.Sprintf("must be one of: %s", strings.Join(models.Categories, ", ")))
	}

	for i := 1; i < len(ranges); i++ {
		if ranges[i].MinQuantity <= ranges[i-1].MaxQuantity {
			return errors.AddValidationError("price_ranges",
				fmt.Sprintf("range %d must start above range %d's max quantity", i+1, i))
		}
	}

	return nil
}

func toPriceRanges(inputs []models.PriceRangeInput) []models.PriceRange {
	ranges := make([]models.PriceRange, 0, len(inputs))

	for _, input := range inputs {
		ranges = append(ranges, models.PriceRange{
			MinQuantity: input.MinQuantity,
			MaxQuantity: input.MaxQuantity,
			Price:       input.Price,
		})
	}

	return ranges
}

func (s *productService) invalidateProduct(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, id.String())); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Product cache invalidation failed", slog.String("error", err.Error()))
	}
}

func (s *productService) invalidateListings(ctx context.Context) {
	logger := middleware.LoggerFromContext(ctx)

	for _, key := range []string{cache.CategoryCountsKey, cache.SectionsKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Warn("Listing cache invalidation failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}
