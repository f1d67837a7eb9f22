package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bulkmart/catalog-platform/internal/api/middleware"
	"github.com/bulkmart/catalog-platform/internal/errors"
	"github.com/bulkmart/catalog-platform/internal/models"
	service "github.com/bulkmart/catalog-platform/internal/services"
	"github.com/bulkmart/catalog-platform/internal/utils"
	"github.com/bulkmart/catalog-platform/internal/utils/response"
	"github.com/google/uuid"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// for eg: GET /products?category=GROCERIES&search=rice&page=1&page_size=12
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		filter := models.ProductFilter{
			Category:     r.URL.Query().Get("category"),
			NameContains: r.URL.Query().Get("search"),
		}

		page := utils.QueryInt(r, "page", 1)
		pageSize := utils.QueryInt(r, "page_size", 0)

		listing, err := h.productService.ListProducts(r.Context(), filter, page, pageSize)
		if err != nil {
			logger.Error("Failed to fetch products", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, listing)
	}
}

// Browse is the session-scoped listing: repeated calls with the same session
// id accumulate pages instead of replacing them.
// for eg: GET /catalog/browse?session=<id>&category=GROCERIES&search=rice&next=true
func (h *ProductHandler) Browse() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		query := r.URL.Query()

		req := models.BrowseRequest{
			SessionID:   query.Get("session"),
			Category:    query.Get("category"),
			SearchQuery: query.Get("search"),
			NextPage:    query.Get("next") == "true",
			Reload:      query.Get("reload") == "true",
		}

		listing, err := h.productService.Browse(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to browse catalog", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, listing)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id"))
			return
		}

		product, err := h.productService.GetProduct(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		if product == nil {
			response.Error(w, errors.NotFoundError("Product not found"))
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) Sections() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		sections, err := h.productService.Sections(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to fetch catalog sections", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, sections)
	}
}

func (h *ProductHandler) CategoryCounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		counts, err := h.productService.CategoryCounts(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to fetch category counts", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, counts)
	}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.Error(w, errors.BadRequestError("Invalid request payload"))
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			logger.Error("Error during product creation", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Product created successfully", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id"))
			return
		}

		var req models.UpdateProductRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.Error(w, errors.BadRequestError("Invalid request payload"))
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Error("Error during product update", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Product updated successfully", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id"))
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			logger.Error("Error during product deletion", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Product deleted", slog.String("productId", id.String()))
		response.Success(w, http.StatusOK, map[string]string{"id": id.String()})
	}
}

func (h *ProductHandler) ArchiveProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id"))
			return
		}

		var req models.ArchiveRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.Error(w, errors.BadRequestError("Invalid request payload"))
			return
		}

		if err := h.productService.SetArchived(r.Context(), id, req.IsArchived); err != nil {
			logger.Error("Error during archive toggle", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Product archive state changed", slog.String("productId", id.String()), slog.Bool("is_archived", req.IsArchived))
		response.Success(w, http.StatusOK, map[string]any{"id": id.String(), "is_archived": req.IsArchived})
	}
}
