package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/bulkmart/catalog-platform/internal/api/middleware"
	appErrors "github.com/bulkmart/catalog-platform/internal/errors"
	"github.com/bulkmart/catalog-platform/internal/models"
	repoMocks "github.com/bulkmart/catalog-platform/internal/repositories/mocks"
	service "github.com/bulkmart/catalog-platform/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubCache is an in-memory Cache so service tests exercise the real
// cache-aside flow without redis.
type stubCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(ctx context.Context, key string, value any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(data, value)
}

func (c *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = data

	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)

	return nil
}

func (c *stubCache) Close() error {
	return nil
}

func authedContext(t *testing.T, userID uuid.UUID) context.Context {
	t.Helper()

	return context.WithValue(t.Context(), middleware.UserContextKey, &models.Claims{UserID: userID})
}

func validCreateRequest() *models.CreateProductRequest {
	return &models.CreateProductRequest{
		Name:        "Bulk Basmati Rice 25kg",
		Description: "Long grain basmati rice in 25kg woven sacks",
		Category:    "GROCERIES",
		Images:      []string{"https://images.example.com/rice.jpg"},
		PriceRanges: []models.PriceRangeInput{
			{MinQuantity: 1, MaxQuantity: 10, Price: 65000},
			{MinQuantity: 11, MaxQuantity: 100, Price: 59000},
		},
		Specifications: []string{"Grade A Long Grain"},
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) *appErrors.AppError {
	t.Helper()

	require.Error(t, err)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok, "expected an AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)

	return appErr
}

func TestProductServiceCreateProduct(t *testing.T) {
	userID := uuid.New()

	t.Run("Success - Editor Creates Product", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		req := validCreateRequest()
		req.Name = "  <b>Bulk Basmati Rice 25kg</b>  "

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Once()

		var created *models.Product

		mockStore.On("CreateProduct", mock.Anything, mock.AnythingOfType("*models.Product")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*models.Product) }).
			Return(nil).Once()

		// Act
		product, err := svc.CreateProduct(authedContext(t, userID), req)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Same(t, created, product)

		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.Equal(t, "Bulk Basmati Rice 25kg", product.Name, "markup should be stripped and whitespace trimmed")
		assert.Equal(t, "GROCERIES", product.Category)
		assert.Equal(t, 1, product.MinOrder, "min order should default to 1")
		assert.False(t, product.IsArchived)
		assert.Equal(t, []models.PriceRange{
			{MinQuantity: 1, MaxQuantity: 10, Price: 65000},
			{MinQuantity: 11, MaxQuantity: 100, Price: 59000},
		}, product.PriceRanges)

		mockStore.AssertExpectations(t)
		mockRoles.AssertExpectations(t)
	})

	t.Run("Failure - No Claims", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		// Act
		product, err := svc.CreateProduct(t.Context(), validCreateRequest())

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeUnauthorized)
		assert.Nil(t, product)
		mockRoles.AssertNotCalled(t, "GetRole", mock.Anything, mock.Anything)
		mockStore.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Viewer Role", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleViewer, nil).Once()

		// Act
		product, err := svc.CreateProduct(authedContext(t, userID), validCreateRequest())

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeForbidden)
		assert.Nil(t, product)
		mockStore.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Missing Images", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Once()

		req := validCreateRequest()
		req.Images = nil

		// Act
		_, err := svc.CreateProduct(authedContext(t, userID), req)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
		mockStore.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Relative Image URL", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleAdmin, nil).Once()

		req := validCreateRequest()
		req.Images = []string{"/uploads/rice.jpg"}

		// Act
		_, err := svc.CreateProduct(authedContext(t, userID), req)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
		mockStore.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Non HTTP Image Scheme", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Once()

		req := validCreateRequest()
		req.Images = []string{"httpx://images.example.com/rice.jpg"}

		// Act
		_, err := svc.CreateProduct(authedContext(t, userID), req)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
		mockStore.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Unknown Category", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Once()

		req := validCreateRequest()
		req.Category = "TOYS"

		// Act
		_, err := svc.CreateProduct(authedContext(t, userID), req)

		// Assert
		appErr := assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
		assert.Contains(t, appErr.Message, "category")
	})

	t.Run("Failure - Overlapping Price Ranges", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Once()

		req := validCreateRequest()
		req.PriceRanges = []models.PriceRangeInput{
			{MinQuantity: 1, MaxQuantity: 10, Price: 65000},
			{MinQuantity: 10, MaxQuantity: 100, Price: 59000},
		}

		// Act
		_, err := svc.CreateProduct(authedContext(t, userID), req)

		// Assert
		appErr := assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
		assert.Contains(t, appErr.Message, "price_ranges")
	})

	t.Run("Failure - Store Offline", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		provider := &stubProvider{
			reader:    mockStore,
			writerErr: appErrors.ServiceUnavailableError("backing store is unreachable; writes are disabled"),
		}
		svc := service.NewProductService(provider, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleAdmin, nil).Once()

		// Act
		product, err := svc.CreateProduct(authedContext(t, userID), validCreateRequest())

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeServiceUnavailable)
		assert.Nil(t, product)
	})
}

func TestProductServiceUpdateProduct(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Success - Full Replace", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Once()
		mockStore.On("UpdateProduct", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		req := &models.UpdateProductRequest{
			Name:        "Bulk Basmati Rice 25kg",
			Description: "Updated description",
			Category:    "GROCERIES",
			MinOrder:    5,
			Images:      []string{"https://images.example.com/rice-2.jpg"},
			PriceRanges: []models.PriceRangeInput{
				{MinQuantity: 1, MaxQuantity: 10, Price: 62000},
			},
		}

		// Act
		product, err := svc.UpdateProduct(authedContext(t, userID), productID, req)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, 5, product.MinOrder)
		mockStore.AssertExpectations(t)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleAdmin, nil).Once()
		mockStore.On("UpdateProduct", mock.Anything, mock.AnythingOfType("*models.Product")).Return(sql.ErrNoRows).Once()

		req := &models.UpdateProductRequest{
			Name:        "Bulk Basmati Rice 25kg",
			Description: "Updated description",
			Category:    "GROCERIES",
			Images:      []string{"https://images.example.com/rice.jpg"},
			PriceRanges: []models.PriceRangeInput{
				{MinQuantity: 1, MaxQuantity: 10, Price: 62000},
			},
		}

		// Act
		product, err := svc.UpdateProduct(authedContext(t, userID), productID, req)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
		assert.Nil(t, product)
	})
}

func TestProductServiceDeleteProduct(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Success - Admin", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleAdmin, nil).Once()
		mockStore.On("DeleteProduct", mock.Anything, productID).Return(nil).Once()

		// Act
		err := svc.DeleteProduct(authedContext(t, userID), productID)

		// Assert
		require.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("Failure - Editor Cannot Delete", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Once()

		// Act
		err := svc.DeleteProduct(authedContext(t, userID), productID)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeForbidden)
		mockStore.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
	})
}

func TestProductServiceSetArchived(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Success - Idempotent Archive", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		ctx := authedContext(t, userID)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleEditor, nil).Twice()
		mockStore.On("SetArchived", mock.Anything, productID, true).Return(nil).Twice()

		// Act: archiving an already archived record succeeds again
		require.NoError(t, svc.SetArchived(ctx, productID, true))
		require.NoError(t, svc.SetArchived(ctx, productID, true))

		// Assert
		mockStore.AssertExpectations(t)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		mockRoles := new(repoMocks.UserRoleRepository)
		svc := service.NewProductService(&stubProvider{reader: mockStore, writer: mockStore}, mockRoles, newStubCache(), 12, 8)

		mockRoles.On("GetRole", mock.Anything, userID).Return(models.RoleAdmin, nil).Once()
		mockStore.On("SetArchived", mock.Anything, productID, false).Return(sql.ErrNoRows).Once()

		// Act
		err := svc.SetArchived(authedContext(t, userID), productID, false)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestProductServiceListProducts(t *testing.T) {
	t.Run("Success - HasMore From Total", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 8)

		filter := models.ProductFilter{Category: "GROCERIES"}
		products := catalogFixture(2)

		mockStore.On("ListProducts", mock.Anything, filter, 1, 2).Return(products, 5, nil).Once()

		// Act
		listing, err := svc.ListProducts(t.Context(), filter, 1, 2)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 5, listing.Total)
		assert.Equal(t, 1, listing.Page)
		assert.Equal(t, 2, listing.PageSize)
		assert.True(t, listing.HasMore)
		assert.Equal(t, products, listing.Data)
		mockStore.AssertExpectations(t)
	})

	t.Run("Success - Defaults Applied", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 8)

		mockStore.On("ListProducts", mock.Anything, models.ProductFilter{}, 1, 12).Return([]*models.Product{}, 0, nil).Once()

		// Act
		listing, err := svc.ListProducts(t.Context(), models.ProductFilter{}, 0, 0)

		// Assert
		require.NoError(t, err)
		assert.False(t, listing.HasMore)
		mockStore.AssertExpectations(t)
	})

	t.Run("Success - Oversized Page Size Clamped", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 8)

		// clamp is four default pages
		mockStore.On("ListProducts", mock.Anything, models.ProductFilter{}, 1, 48).Return([]*models.Product{}, 0, nil).Once()

		// Act
		listing, err := svc.ListProducts(t.Context(), models.ProductFilter{}, 1, 10000)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 48, listing.PageSize)
		mockStore.AssertExpectations(t)
	})

	t.Run("Failure - Store Error", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 8)

		mockStore.On("ListProducts", mock.Anything, models.ProductFilter{}, 1, 12).Return(nil, 0, assert.AnError).Once()

		// Act
		listing, err := svc.ListProducts(t.Context(), models.ProductFilter{}, 1, 12)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
		assert.Nil(t, listing)
	})
}

func TestProductServiceGetProduct(t *testing.T) {
	productID := uuid.New()

	t.Run("Success - Second Read Served From Cache", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 8)

		stored := &models.Product{ID: productID, Name: "Cached Product", Category: "BEAUTY"}
		mockStore.On("GetProductByID", mock.Anything, productID).Return(stored, nil).Once()

		// Act
		first, err := svc.GetProduct(t.Context(), productID)
		require.NoError(t, err)

		second, err := svc.GetProduct(t.Context(), productID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, first.Name, second.Name)
		mockStore.AssertExpectations(t)
	})

	t.Run("Success - Missing Record Returns Nil", func(t *testing.T) {
		// Arrange
		mockStore := new(repoMocks.ProductStore)
		svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 8)

		mockStore.On("GetProductByID", mock.Anything, productID).Return(nil, nil).Once()

		// Act
		product, err := svc.GetProduct(t.Context(), productID)

		// Assert
		require.NoError(t, err)
		assert.Nil(t, product)
	})
}

func TestProductServiceSections(t *testing.T) {
	// Arrange
	mockStore := new(repoMocks.ProductStore)
	svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 2)

	newest := catalogFixture(2)
	recommended := catalogFixture(2)

	mockStore.On("ListProducts", mock.Anything, models.ProductFilter{}, 1, 2).Return(newest, 4, nil).Once()
	mockStore.On("ListProducts", mock.Anything, models.ProductFilter{}, 2, 2).Return(recommended, 4, nil).Once()

	// Act
	sections, err := svc.Sections(t.Context())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, newest, sections.NewProducts)
	assert.Equal(t, recommended, sections.RecommendedProducts)
	mockStore.AssertExpectations(t)

	// second call hits the cache, no further store calls expected
	cached, err := svc.Sections(t.Context())
	require.NoError(t, err)
	assert.Len(t, cached.NewProducts, 2)
}

func TestProductServiceCategoryCounts(t *testing.T) {
	// Arrange
	mockStore := new(repoMocks.ProductStore)
	svc := service.NewProductService(&stubProvider{reader: mockStore}, new(repoMocks.UserRoleRepository), newStubCache(), 12, 8)

	counts := map[string]int{"GROCERIES": 3, "BEAUTY": 1}
	mockStore.On("CategoryCounts", mock.Anything).Return(counts, nil).Once()

	// Act
	result, err := svc.CategoryCounts(t.Context())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, counts, result)

	cached, err := svc.CategoryCounts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, counts, cached)
	mockStore.AssertExpectations(t)
}
