package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom-app/stockroom/internal/platform/httpx"
	"github.com/stockroom-app/stockroom/internal/upload"
)

// maxUploadBytes caps a create request including its image part.
const maxUploadBytes = 10 << 20

// Handler exposes the product catalog HTTP surface.
type Handler struct {
	logger  *slog.Logger
	service *Service
	store   *upload.Store
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, store *upload.Store) *Handler {
	return &Handler{logger: logger, service: service, store: store}
}

// Routes mounts the catalog endpoints. Listing endpoints stay anonymous;
// everything else sits behind the bearer middleware.
func (h *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListProducts)
	r.Get("/GetFilteredProducts", h.ListFilteredProducts)
	r.Group(func(pr chi.Router) {
		pr.Use(requireAuth)
		pr.Get("/{id}", h.GetProductByID)
		pr.Post("/", h.CreateProduct)
		pr.Put("/{id}", h.UpdateProduct)
		pr.Patch("/{id}/UpdateProductQuantity", h.UpdateProductQuantity)
		pr.Delete("/{id}", h.DeleteProduct)
	})
	return r
}

type productListResponse struct {
	httpx.Envelope
	Product []ProductDTO `json:"Product"`
}

type filteredProductsResponse struct {
	httpx.Envelope
	Product           []ProductDTO     `json:"Product"`
	TotalPages        int              `json:"TotalPages"`
	SearchText        string           `json:"SearchText"`
	Category          *Category        `json:"Category"`
	MinWholesalePrice *decimal.Decimal `json:"MinWholesalePrice"`
	MaxWholesalePrice *decimal.Decimal `json:"MaxWholesalePrice"`
	MinRetailPrice    *decimal.Decimal `json:"MinRetailPrice"`
	MaxRetailPrice    *decimal.Decimal `json:"MaxRetailPrice"`
	Quantity          *int             `json:"Quantity"`
	SortDescending    bool             `json:"SortDescending"`
	PageNumber        int              `json:"PageNumber"`
	PageSize          int              `json:"PageSize"`
}

type productCodeResponse struct {
	httpx.Envelope
	ProductCode string `json:"ProductCode"`
}

type quantityUpdateResponse struct {
	Message         string    `json:"Message"`
	ProductID       uuid.UUID `json:"ProductID"`
	UpdatedQuantity int       `json:"UpdatedQuantity"`
	UpdatedOn       time.Time `json:"UpdatedOn"`
}

type createProductResponse struct {
	httpx.Envelope
	FileName string `json:"FileName"`
}

// ListProducts handles GET /: every active product with its images.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("listing all active products")

	products, images, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "An error occurred while retrieving the products.", err.Error())
		return
	}
	if len(products) == 0 {
		h.logger.Warn("no products found")
		httpx.Fail(w, http.StatusNotFound, "No products found.", "No data available.")
		return
	}

	h.logger.Info("retrieved products", slog.Int("count", len(products)))
	httpx.JSON(w, http.StatusOK, productListResponse{
		Envelope: httpx.Envelope{Message: "Product retrieved successfully."},
		Product:  NewProductDTOs(products, images),
	})
}

// ListFilteredProducts handles GET /GetFilteredProducts: the filtered,
// sorted, paginated listing with pagination metadata echoed back.
func (h *Handler) ListFilteredProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid filter parameters.", err.Error())
		return
	}
	filter.Normalize()
	h.logger.Info("listing filtered products",
		slog.String("search", filter.SearchText),
		slog.Int("page", filter.Page),
		slog.Int("page_size", filter.PageSize),
	)

	products, images, pagination, err := h.service.ListFilteredProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("filtered listing failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "An error occurred while retrieving the products.", err.Error())
		return
	}
	if len(products) == 0 {
		h.logger.Warn("no results for filter")
		httpx.Fail(w, http.StatusNotFound, "No results found. Please adjust your filters.", "No data available.")
		return
	}

	h.logger.Info("retrieved filtered products", slog.Int("count", len(products)), slog.Int("total_pages", pagination.TotalPages))
	httpx.JSON(w, http.StatusOK, filteredProductsResponse{
		Envelope:          httpx.Envelope{Message: "Product retrieved successfully."},
		Product:           NewProductDTOs(products, images),
		TotalPages:        pagination.TotalPages,
		SearchText:        filter.SearchText,
		Category:          filter.Category,
		MinWholesalePrice: filter.MinWholesalePrice,
		MaxWholesalePrice: filter.MaxWholesalePrice,
		MinRetailPrice:    filter.MinRetailPrice,
		MaxRetailPrice:    filter.MaxRetailPrice,
		Quantity:          filter.MinQuantity,
		SortDescending:    filter.SortDescending,
		PageNumber:        pagination.Page,
		PageSize:          pagination.PerPage,
	})
}

// GetProductByID handles GET /{id}. A missing product answers 200 with a
// Failed envelope rather than 404; clients of the original API depend on it.
func (h *Handler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Failed", "Invalid product ID.")
		return
	}
	h.logger.Info("fetching product", slog.String("id", id.String()))

	product, images, err := h.service.GetProduct(r.Context(), id)
	switch {
	case errors.Is(err, httpx.ErrNotFound):
		h.logger.Warn("product not found", slog.String("id", id.String()))
		httpx.Fail(w, http.StatusOK, "Failed", "No products found for the provided Product ID.")
		return
	case err != nil:
		h.logger.Error("get product failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "An error occurred while retrieving the product.", err.Error())
		return
	}

	httpx.JSON(w, http.StatusOK, productListResponse{
		Envelope: httpx.Envelope{Message: "Product fetched successfully."},
		Product:  NewProductDTOs([]Product{*product}, images),
	})
}

// CreateProduct handles POST /: multipart form data with an optional single
// image part. When anything fails after the file was written, the file is
// removed best-effort before the failure is reported.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("creating product")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSON(w, http.StatusBadRequest, createProductResponse{
			Envelope: httpx.Envelope{Message: "Product creation failed.", ErrorMessage: err.Error()},
		})
		return
	}

	var saved *upload.SavedFile
	if file, header, err := r.FormFile("productImage"); err == nil {
		defer file.Close()
		h.logger.Info("uploading product image", slog.String("file", header.Filename))
		s, err := h.store.Save(file, header.Filename)
		if err != nil {
			h.logger.Error("image upload failed", slog.Any("error", err))
			httpx.JSON(w, http.StatusBadRequest, createProductResponse{
				Envelope: httpx.Envelope{Message: "Product creation failed.", ErrorMessage: err.Error()},
			})
			return
		}
		saved = &s
	}

	req, err := parseCreateRequest(r.MultipartForm.Value)
	if err == nil {
		var product Product
		product, err = h.service.CreateProduct(r.Context(), req, saved)
		if err == nil {
			h.logger.Info("product created", slog.String("id", product.ProductID.String()), slog.String("code", product.ProductCode))
			w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+product.ProductID.String())
			fileName := ""
			if saved != nil {
				fileName = saved.FileName
			}
			httpx.JSON(w, http.StatusCreated, createProductResponse{
				Envelope: httpx.Envelope{Message: "Product created successfully."},
				FileName: fileName,
			})
			return
		}
	}

	// Compensating action: the product row never landed, so the uploaded
	// file must not stay behind.
	if saved != nil {
		h.logger.Info("cleaning up uploaded image after failure", slog.String("file", saved.FileName))
		h.store.Remove(saved.FileName)
	}

	status := http.StatusInternalServerError
	if errors.Is(err, httpx.ErrValidation) {
		status = http.StatusBadRequest
	}
	h.logger.Error("create product failed", slog.Any("error", err))
	httpx.JSON(w, status, createProductResponse{
		Envelope: httpx.Envelope{Message: "Product creation failed.", ErrorMessage: err.Error()},
	})
}

// UpdateProduct handles PUT /{id}: the full update.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Product not found.", "Invalid product ID.")
		return
	}
	h.logger.Info("updating product", slog.String("id", id.String()))

	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Failed to update product.", err.Error())
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), id, req)
	switch {
	case errors.Is(err, httpx.ErrNotFound):
		h.logger.Warn("product not found", slog.String("id", id.String()))
		httpx.JSON(w, http.StatusNotFound, productCodeResponse{
			Envelope: httpx.Envelope{Message: "Product not found.", ErrorMessage: "Invalid product ID."},
		})
		return
	case errors.Is(err, httpx.ErrValidation):
		httpx.JSON(w, http.StatusBadRequest, productCodeResponse{
			Envelope: httpx.Envelope{Message: "Failed to update product.", ErrorMessage: err.Error()},
		})
		return
	case err != nil:
		h.logger.Error("update product failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "An error occurred while updating the product.", err.Error())
		return
	}

	h.logger.Info("product updated", slog.String("id", id.String()))
	httpx.JSON(w, http.StatusOK, productCodeResponse{
		Envelope:    httpx.Envelope{Message: "Product updated successfully."},
		ProductCode: updated.ProductCode,
	})
}

// UpdateProductQuantity handles PATCH /{id}/UpdateProductQuantity, the narrow
// update that spares clients the full payload for a quantity-only change.
func (h *Handler) UpdateProductQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Product not found.", "Invalid product ID.")
		return
	}
	h.logger.Info("updating product quantity", slog.String("id", id.String()))

	var req QuantityUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Failed to update product quantity.", err.Error())
		return
	}

	updated, err := h.service.UpdateProductQuantity(r.Context(), id, req)
	switch {
	case errors.Is(err, httpx.ErrNotFound):
		h.logger.Warn("product not found", slog.String("id", id.String()))
		httpx.Fail(w, http.StatusNotFound, "Product not found.", "Invalid product ID.")
		return
	case errors.Is(err, httpx.ErrValidation):
		httpx.Fail(w, http.StatusBadRequest, "Failed to update product quantity.", err.Error())
		return
	case err != nil:
		h.logger.Error("update quantity failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "An error occurred while updating the product quantity.", err.Error())
		return
	}

	h.logger.Info("product quantity updated", slog.String("id", id.String()))
	httpx.JSON(w, http.StatusOK, quantityUpdateResponse{
		Message:         "Product quantity updated successfully.",
		ProductID:       updated.ProductID,
		UpdatedQuantity: derefInt(updated.Quantity),
		UpdatedOn:       updated.UpdatedOn,
	})
}

// DeleteProduct handles DELETE /{id}: logical deletion only.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Product not found.", "Invalid product ID.")
		return
	}
	h.logger.Info("deleting product", slog.String("id", id.String()))

	deleted, err := h.service.DeleteProduct(r.Context(), id)
	switch {
	case errors.Is(err, httpx.ErrNotFound):
		h.logger.Warn("product not found", slog.String("id", id.String()))
		httpx.JSON(w, http.StatusNotFound, productCodeResponse{
			Envelope: httpx.Envelope{Message: "Product not found.", ErrorMessage: "Invalid product ID."},
		})
		return
	case err != nil:
		h.logger.Error("delete product failed", slog.String("id", id.String()), slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "An error occurred while deleting the product.", err.Error())
		return
	}

	h.logger.Info("product deleted", slog.String("id", id.String()), slog.String("code", deleted.ProductCode))
	httpx.JSON(w, http.StatusOK, productCodeResponse{
		Envelope:    httpx.Envelope{Message: "Product deleted successfully."},
		ProductCode: deleted.ProductCode,
	})
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func parseFilter(query url.Values) (Filter, error) {
	var filter Filter
	filter.SearchText = query.Get("searchText")

	if v := query.Get("category"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			return Filter{}, fmt.Errorf("category: %w", err)
		}
		category := Category(code)
		filter.Category = &category
	}

	var err error
	if filter.MinWholesalePrice, err = queryDecimal(query, "minWholesalePrice"); err != nil {
		return Filter{}, err
	}
	if filter.MaxWholesalePrice, err = queryDecimal(query, "maxWholesalePrice"); err != nil {
		return Filter{}, err
	}
	if filter.MinRetailPrice, err = queryDecimal(query, "minRetailPrice"); err != nil {
		return Filter{}, err
	}
	if filter.MaxRetailPrice, err = queryDecimal(query, "maxRetailPrice"); err != nil {
		return Filter{}, err
	}

	if v := query.Get("quantity"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return Filter{}, fmt.Errorf("quantity: %w", err)
		}
		filter.MinQuantity = &q
	}
	filter.SortDescending = query.Get("sortDescending") == "true"

	if v := query.Get("pageNumber"); v != "" {
		if filter.Page, err = strconv.Atoi(v); err != nil {
			return Filter{}, fmt.Errorf("pageNumber: %w", err)
		}
	}
	if v := query.Get("pageSize"); v != "" {
		if filter.PageSize, err = strconv.Atoi(v); err != nil {
			return Filter{}, fmt.Errorf("pageSize: %w", err)
		}
	}
	return filter, nil
}

func queryDecimal(query url.Values, key string) (*decimal.Decimal, error) {
	v := query.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &d, nil
}

func parseCreateRequest(form url.Values) (CreateProductRequest, error) {
	var req CreateProductRequest
	req.ProductName = form.Get("ProductName")
	req.Description = form.Get("Description")
	req.RetailCurrency = form.Get("RetailCurrency")
	req.WholesaleCurrency = form.Get("WholesaleCurrency")

	if v := form.Get("ManufacturerID"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return CreateProductRequest{}, fmt.Errorf("%w: ManufacturerID: %v", httpx.ErrValidation, err)
		}
		req.ManufacturerID = &id
	}
	if v := form.Get("Category"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			return CreateProductRequest{}, fmt.Errorf("%w: Category: %v", httpx.ErrValidation, err)
		}
		req.Category = Category(code)
	}
	if v := form.Get("Quantity"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return CreateProductRequest{}, fmt.Errorf("%w: Quantity: %v", httpx.ErrValidation, err)
		}
		req.Quantity = &q
	}

	var err error
	if req.WholesalePrice, err = formDecimal(form, "WholesalePrice"); err != nil {
		return CreateProductRequest{}, err
	}
	if req.RetailPrice, err = formDecimal(form, "RetailPrice"); err != nil {
		return CreateProductRequest{}, err
	}
	if req.ShippingCost, err = formDecimal(form, "ShippingCost"); err != nil {
		return CreateProductRequest{}, err
	}
	return req, nil
}

func formDecimal(form url.Values, key string) (decimal.NullDecimal, error) {
	v := form.Get(key)
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s: %v", httpx.ErrValidation, key, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
