package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/upload"
	_ "github.com/stockroom-app/stockroom/testing"
)

func passthrough(next http.Handler) http.Handler { return next }

type handlerFixture struct {
	router http.Handler
	repo   *mockRepository
	images *mockImageRepository
	store  *upload.Store
	seeded []Product
}

func newHandlerFixture(t *testing.T, seed bool) *handlerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := upload.NewStore(t.TempDir(), logger)
	require.NoError(t, err)

	var (
		svc    *Service
		repo   *mockRepository
		images *mockImageRepository
		seeded []Product
	)
	if seed {
		svc, repo, images, seeded = seedService(t)
	} else {
		repo = newMockRepository()
		images = &mockImageRepository{}
		svc = NewService(repo, images)
	}

	h := NewHandler(logger, svc, store)
	return &handlerFixture{
		router: h.Routes(passthrough),
		repo:   repo,
		images: images,
		store:  store,
		seeded: seeded,
	}
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandlerListProducts(t *testing.T) {
	t.Run("empty catalog answers 404", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		rec := doJSON(t, f.router, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "No products found.", body["Message"])
		assert.Equal(t, "No data available.", body["ErrorMessage"])
	})

	t.Run("seeded catalog answers 200", func(t *testing.T) {
		f := newHandlerFixture(t, true)
		rec := doJSON(t, f.router, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Product retrieved successfully.", body["Message"])
		assert.Equal(t, "", body["ErrorMessage"])
		products := body["Product"].([]any)
		require.Len(t, products, 2)
		first := products[0].(map[string]any)
		assert.Equal(t, "Laptop", first["ProductName"])
		assert.Equal(t, "Computer & Office", first["Category"])
		assert.Equal(t, "P001", first["ProductCode"])
	})
}

func TestHandlerListFilteredProducts(t *testing.T) {
	t.Run("no match answers 404", func(t *testing.T) {
		f := newHandlerFixture(t, true)
		rec := doJSON(t, f.router, http.MethodGet, "/GetFilteredProducts?searchText=toaster", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "No results found. Please adjust your filters.", body["Message"])
	})

	t.Run("match echoes the filter and pagination", func(t *testing.T) {
		f := newHandlerFixture(t, true)
		rec := doJSON(t, f.router, http.MethodGet, "/GetFilteredProducts?searchText=lap&pageNumber=1&pageSize=5&sortDescending=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Product retrieved successfully.", body["Message"])
		assert.Equal(t, "lap", body["SearchText"])
		assert.Equal(t, float64(1), body["TotalPages"])
		assert.Equal(t, float64(1), body["PageNumber"])
		assert.Equal(t, float64(5), body["PageSize"])
		assert.Equal(t, true, body["SortDescending"])
		require.Len(t, body["Product"].([]any), 1)
	})

	t.Run("malformed price answers 400", func(t *testing.T) {
		f := newHandlerFixture(t, true)
		rec := doJSON(t, f.router, http.MethodGet, "/GetFilteredProducts?minRetailPrice=abc", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerGetProductByID(t *testing.T) {
	f := newHandlerFixture(t, true)

	t.Run("found", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodGet, "/"+f.seeded[0].ProductID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Product fetched successfully.", body["Message"])
		products := body["Product"].([]any)
		require.Len(t, products, 1)
	})

	t.Run("missing id still answers 200 with a Failed envelope", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodGet, "/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Failed", body["Message"])
		assert.Equal(t, "No products found for the provided Product ID.", body["ErrorMessage"])
	})

	t.Run("malformed id answers 400", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodGet, "/not-a-uuid", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func multipartCreateRequest(t *testing.T, fields map[string]string, imageName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("productImage", imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandlerCreateProduct(t *testing.T) {
	validFields := map[string]string{
		"ProductName":       "Desk",
		"Description":       "Standing desk",
		"Category":          "2",
		"WholesalePrice":    "120.50",
		"RetailPrice":       "180.99",
		"Quantity":          "5",
		"RetailCurrency":    "EUR",
		"WholesaleCurrency": "EUR",
		"ShippingCost":      "9.99",
	}

	t.Run("creates with image", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, multipartCreateRequest(t, validFields, "desk.png"))

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Product created successfully.", body["Message"])
		fileName, _ := body["FileName"].(string)
		require.NotEmpty(t, fileName)
		assert.True(t, strings.HasSuffix(fileName, ".png"))
		assert.NotEmpty(t, rec.Header().Get("Location"))

		// The file landed on disk and its metadata was recorded.
		_, err := os.Stat(filepath.Join(f.store.Dir(), fileName))
		require.NoError(t, err)
		require.Len(t, f.images.images, 1)
		assert.Equal(t, upload.URLPrefix+fileName, f.images.images[0].ProductImageURL)
	})

	t.Run("creates without image", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, multipartCreateRequest(t, validFields, ""))

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Product created successfully.", body["Message"])
		assert.Equal(t, "", body["FileName"])
		assert.Empty(t, f.images.images)
	})

	t.Run("validation failure removes the uploaded file", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		bad := map[string]string{}
		for k, v := range validFields {
			bad[k] = v
		}
		bad["ProductName"] = ""

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, multipartCreateRequest(t, bad, "desk.png"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Product creation failed.", body["Message"])
		assert.NotEmpty(t, body["ErrorMessage"])

		entries, err := os.ReadDir(f.store.Dir())
		require.NoError(t, err)
		assert.Empty(t, entries, "uploaded file must be cleaned up")
	})

	t.Run("unsupported image extension answers 400", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, multipartCreateRequest(t, validFields, "desk.exe"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerUpdateProduct(t *testing.T) {
	f := newHandlerFixture(t, true)
	body := UpdateProductRequest{
		ProductName:         "Laptop Pro",
		Description:         "16 inch",
		CategoryDescription: "Computer & Office",
		WholesalePrice:      money("600"),
		RetailPrice:         money("850"),
		Quantity:            intPtr(7),
		RetailCurrency:      "USD",
		WholesaleCurrency:   "USD",
		IsActive:            true,
	}

	t.Run("success returns the product code", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodPut, "/"+f.seeded[0].ProductID.String(), body)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody(t, rec)
		assert.Equal(t, "Product updated successfully.", resp["Message"])
		assert.Equal(t, "P001", resp["ProductCode"])
	})

	t.Run("unknown id answers 404", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodPut, "/"+uuid.NewString(), body)
		require.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeBody(t, rec)
		assert.Equal(t, "Product not found.", resp["Message"])
		assert.Equal(t, "Invalid product ID.", resp["ErrorMessage"])
	})

	t.Run("validation failure answers 400", func(t *testing.T) {
		bad := body
		bad.CategoryDescription = ""
		rec := doJSON(t, f.router, http.MethodPut, "/"+f.seeded[0].ProductID.String(), bad)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerUpdateProductQuantity(t *testing.T) {
	f := newHandlerFixture(t, true)

	t.Run("success", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodPatch,
			"/"+f.seeded[1].ProductID.String()+"/UpdateProductQuantity",
			QuantityUpdateRequest{Quantity: intPtr(12)},
		)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Product quantity updated successfully.", body["Message"])
		assert.Equal(t, f.seeded[1].ProductID.String(), body["ProductID"])
		assert.Equal(t, float64(12), body["UpdatedQuantity"])
		assert.NotEmpty(t, body["UpdatedOn"])
	})

	t.Run("negative quantity answers 400", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodPatch,
			"/"+f.seeded[1].ProductID.String()+"/UpdateProductQuantity",
			QuantityUpdateRequest{Quantity: intPtr(-3)},
		)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id answers 404", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodPatch,
			"/"+uuid.NewString()+"/UpdateProductQuantity",
			QuantityUpdateRequest{Quantity: intPtr(3)},
		)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerDeleteProduct(t *testing.T) {
	f := newHandlerFixture(t, true)

	rec := doJSON(t, f.router, http.MethodDelete, "/"+f.seeded[0].ProductID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product deleted successfully.", body["Message"])
	assert.Equal(t, "P001", body["ProductCode"])

	// The row stays behind, only the listing forgets it.
	raw, ok := f.repo.products[f.seeded[0].ProductID]
	require.True(t, ok)
	assert.False(t, raw.IsActive)

	t.Run("second delete answers 404", func(t *testing.T) {
		rec := doJSON(t, f.router, http.MethodDelete, "/"+f.seeded[0].ProductID.String(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
