package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	catalogapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/qrcode"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/storage"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	products   *MockProductRepository
	categories *MockCategoryRepository
	storage    *storage.MemoryObjectStorage
	qr         *qrcode.Generator
	router     *gin.Engine
}

func newProductFixture(maxImageBytes int64) *productFixture {
	f := &productFixture{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		storage:    storage.NewMemoryObjectStorage("http://media.test"),
		qr:         qrcode.NewGenerator(128),
	}
	productService := catalogapp.NewProductService(f.products, f.categories, nil, nil)
	mediaService := catalogapp.NewProductMediaService(f.products, f.storage, f.qr, nil,
		catalogapp.MediaServiceConfig{MaxImageBytes: maxImageBytes, QRCodeSize: 128}, nil)
	h := NewProductHandler(productService, mediaService, maxImageBytes)

	f.router = newTestRouter()
	products := f.router.Group("/catalog/products")
	products.POST("", h.Create)
	products.GET("", h.List)
	products.GET("/low-stock", h.ListLowStock)
	products.POST("/labels", h.LabelSheet)
	products.GET("/code/:code", h.GetByCode)
	products.GET("/:id", h.GetByID)
	products.PUT("/:id/price", h.UpdatePrice)
	products.POST("/:id/stock", h.AdjustStock)
	products.PUT("/:id/nutrition", h.SetNutrition)
	products.POST("/:id/deactivate", h.Deactivate)
	products.POST("/:id/qr", h.RegenerateQRCode)
	products.GET("/:id/qr.png", h.QRCodePNG)
	products.POST("/:id/image", h.UploadImage)
	products.GET("/:id/image", h.GetImage)
	products.DELETE("/:id/image", h.DeleteImage)
	products.DELETE("/:id", h.Delete)

	shop := f.router.Group("/shop/products")
	shop.GET("", h.ListPublic)
	shop.GET("/qr/:code", h.GetByQRCode)
	return f
}

func uploadRequest(t *testing.T, path string, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(ImageFormField, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestProductHandler_Create(t *testing.T) {
	f := newProductFixture(0)
	f.products.On("ExistsByCode", mock.Anything, "LEC-001").Return(false, nil)
	f.products.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	w := performRequest(f.router, http.MethodPost, "/catalog/products", catalogapp.CreateProductRequest{
		Code:     "LEC-001",
		Name:     "Leche Gloria 400g",
		Unit:     "unidad",
		Price:    decimal.RequireFromString("4.50"),
		Stock:    24,
		MinStock: 6,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product catalogapp.ProductResponse
	decodeResponse(t, w, &product)
	assert.Equal(t, "LEC-001", product.Code)
	assert.Equal(t, "active", product.Status)
	assert.Equal(t, 24, product.Stock)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("4.5")))
	assert.NotEmpty(t, product.QRCode)
	f.products.AssertExpectations(t)
}

func TestProductHandler_Create_Errors(t *testing.T) {
	t.Run("duplicate code", func(t *testing.T) {
		f := newProductFixture(0)
		f.products.On("ExistsByCode", mock.Anything, "LEC-001").Return(true, nil)

		w := performRequest(f.router, http.MethodPost, "/catalog/products", catalogapp.CreateProductRequest{
			Code: "LEC-001", Name: "Leche", Unit: "unidad", Price: decimal.NewFromInt(4),
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, decodeResponse(t, w, nil).Error.Code)
	})

	t.Run("unknown unit", func(t *testing.T) {
		f := newProductFixture(0)
		w := performRequest(f.router, http.MethodPost, "/catalog/products", map[string]any{
			"code": "LEC-001", "name": "Leche", "unit": "barril", "price": "4.50",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w, nil).Error.Code)
		f.products.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newProductFixture(0)
		categoryID := uuid.New()
		f.products.On("ExistsByCode", mock.Anything, "LEC-001").Return(false, nil)
		f.categories.On("FindByID", mock.Anything, categoryID).Return(nil, shared.ErrNotFound)

		w := performRequest(f.router, http.MethodPost, "/catalog/products", catalogapp.CreateProductRequest{
			Code: "LEC-001", Name: "Leche", Unit: "unidad", Price: decimal.NewFromInt(4), CategoryID: &categoryID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidCategory, decodeResponse(t, w, nil).Error.Code)
	})
}

func TestProductHandler_GetByID(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 10)
	missing := uuid.New()
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	w := performRequest(f.router, http.MethodGet, "/catalog/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got catalogapp.ProductResponse
	decodeResponse(t, w, &got)
	assert.Equal(t, product.ID, got.ID)

	w = performRequest(f.router, http.MethodGet, "/catalog/products/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(f.router, http.MethodGet, "/catalog/products/LEC-001", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetByCode(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 10)
	f.products.On("FindByCode", mock.Anything, "LEC-001").Return(product, nil)

	w := performRequest(f.router, http.MethodGet, "/catalog/products/code/LEC-001", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got catalogapp.ProductResponse
	decodeResponse(t, w, &got)
	assert.Equal(t, product.ID, got.ID)
}

func TestProductHandler_List(t *testing.T) {
	f := newProductFixture(0)
	products := []catalog.Product{*newActiveProduct(t, "LEC-001", 10), *newActiveProduct(t, "PAN-002", 40)}
	f.products.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 2 && filter.PageSize == 2 && filter.Search == "leche"
	})).Return(products, nil)
	f.products.On("Count", mock.Anything, mock.Anything).Return(int64(5), nil)

	w := performRequest(f.router, http.MethodGet, "/catalog/products?search=leche&page=2&page_size=2", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got []catalogapp.ProductResponse
	resp := decodeResponse(t, w, &got)
	assert.Len(t, got, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestProductHandler_List_InvalidQuery(t *testing.T) {
	f := newProductFixture(0)

	w := performRequest(f.router, http.MethodGet, "/catalog/products?page_size=500", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.products.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestProductHandler_ListPublic_ForcesActive(t *testing.T) {
	f := newProductFixture(0)
	isPublicFilter := mock.MatchedBy(func(filter shared.Filter) bool {
		_, lowStock := filter.Filters["low_stock"]
		return filter.Filters["status"] == "active" && !lowStock && filter.Page == 1 && filter.PageSize == 20
	})
	f.products.On("FindAll", mock.Anything, isPublicFilter).Return([]catalog.Product{}, nil)
	f.products.On("Count", mock.Anything, isPublicFilter).Return(int64(0), nil)

	w := performRequest(f.router, http.MethodGet, "/shop/products?status=inactive&low_stock=true", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f.products.AssertExpectations(t)
}

func TestProductHandler_ListLowStock(t *testing.T) {
	f := newProductFixture(0)
	f.products.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["low_stock"] == true && filter.OrderBy == "stock" && filter.OrderDir == "asc"
	})).Return([]catalog.Product{*newActiveProduct(t, "LEC-001", 1)}, nil)
	f.products.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	w := performRequest(f.router, http.MethodGet, "/catalog/products/low-stock", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got []catalogapp.ProductResponse
	decodeResponse(t, w, &got)
	assert.Len(t, got, 1)
}

func TestProductHandler_GetByQRCode(t *testing.T) {
	f := newProductFixture(0)
	active := newActiveProduct(t, "LEC-001", 10)
	inactive := newActiveProduct(t, "PAN-002", 10)
	require.NoError(t, inactive.Deactivate())
	f.products.On("FindByQRCode", mock.Anything, active.QRCode).Return(active, nil)
	f.products.On("FindByQRCode", mock.Anything, inactive.QRCode).Return(inactive, nil)
	f.products.On("FindByQRCode", mock.Anything, "PMP-NOEXISTE").Return(nil, shared.ErrNotFound)

	t.Run("scanned token is normalized", func(t *testing.T) {
		w := performRequest(f.router, http.MethodGet, "/shop/products/qr/"+strings.ToLower(active.QRCode), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.ProductResponse
		decodeResponse(t, w, &got)
		assert.Equal(t, active.ID, got.ID)
	})

	t.Run("inactive product is unavailable", func(t *testing.T) {
		w := performRequest(f.router, http.MethodGet, "/shop/products/qr/"+inactive.QRCode, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeProductUnavailable, decodeResponse(t, w, nil).Error.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		w := performRequest(f.router, http.MethodGet, "/shop/products/qr/pmp-noexiste", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_UpdatePrice(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 10)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Save", mock.Anything, product).Return(nil)

	w := performRequest(f.router, http.MethodPut, "/catalog/products/"+product.ID.String()+"/price",
		catalogapp.UpdatePriceRequest{Price: decimal.RequireFromString("5.20")})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, product.Price.Equal(decimal.RequireFromString("5.20")))
}

func TestProductHandler_AdjustStock(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 3)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Save", mock.Anything, product).Return(nil)
	path := "/catalog/products/" + product.ID.String() + "/stock"

	w := performRequest(f.router, http.MethodPost, path, catalogapp.AdjustStockRequest{Delta: 12, Reason: "Reposición"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got catalogapp.ProductResponse
	decodeResponse(t, w, &got)
	assert.Equal(t, 15, got.Stock)

	w = performRequest(f.router, http.MethodPost, path, catalogapp.AdjustStockRequest{Delta: -20})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, decodeResponse(t, w, nil).Error.Code)
	assert.Equal(t, 15, product.Stock)
}

func TestProductHandler_SetNutrition(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "GAL-003", 10)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Save", mock.Anything, product).Return(nil)
	path := "/catalog/products/" + product.ID.String() + "/nutrition"

	w := performRequest(f.router, http.MethodPut, path, catalogapp.NutritionRequest{
		Form:          "solid",
		EnergyKcal:    decimal.NewFromInt(480),
		SodiumMg:      decimal.NewFromInt(650),
		SugarG:        decimal.NewFromInt(30),
		SaturatedFatG: decimal.NewFromInt(9),
		TransFatG:     decimal.Zero,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got catalogapp.ProductResponse
	decodeResponse(t, w, &got)
	require.NotNil(t, got.Nutrition)
	assert.NotEmpty(t, got.Octagons)

	w = performRequest(f.router, http.MethodPut, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, product.Nutrition)
}

func TestProductHandler_RegenerateQRCode(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 10)
	previous := product.QRCode
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Save", mock.Anything, product).Return(nil)

	w := performRequest(f.router, http.MethodPost, "/catalog/products/"+product.ID.String()+"/qr", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got catalogapp.ProductResponse
	decodeResponse(t, w, &got)
	assert.NotEqual(t, previous, got.QRCode)
}

func TestProductHandler_QRCodePNG(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 10)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	path := "/catalog/products/" + product.ID.String() + "/qr.png"

	w := performRequest(f.router, http.MethodGet, path+"?size=256", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	for _, size := range []string{"10", "9999", "grande"} {
		w = performRequest(f.router, http.MethodGet, path+"?size="+size, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, size)
	}
}

func TestProductHandler_ImageLifecycle(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 10)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Save", mock.Anything, product).Return(nil)
	path := "/catalog/products/" + product.ID.String() + "/image"

	png, err := f.qr.PNG("foto", 64)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, uploadRequest(t, path, "foto.bin", png))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var image catalogapp.ImageResponse
	decodeResponse(t, w, &image)
	assert.True(t, strings.HasSuffix(image.Key, ".png"))
	assert.True(t, strings.HasPrefix(image.URL, "http://media.test/"))
	data, contentType, ok := f.storage.Object(image.Key)
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, png, data)

	w = performRequest(f.router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(f.router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	_, _, ok = f.storage.Object(image.Key)
	assert.False(t, ok)

	w = performRequest(f.router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNoImage, decodeResponse(t, w, nil).Error.Code)
}

func TestProductHandler_UploadImage_Rejected(t *testing.T) {
	id := uuid.New()
	path := "/catalog/products/" + id.String() + "/image"

	t.Run("too large", func(t *testing.T) {
		f := newProductFixture(16)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, uploadRequest(t, path, "foto.png", bytes.Repeat([]byte{0xff}, 64)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeImageTooLarge, decodeResponse(t, w, nil).Error.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		f := newProductFixture(0)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, uploadRequest(t, path, "foto.png", []byte("esto no es una imagen")))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Equal(t, dto.ErrCodeUnsupportedImage, decodeResponse(t, w, nil).Error.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newProductFixture(0)
		w := performRequest(f.router, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newProductFixture(0)
		f.products.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)
		png, err := f.qr.PNG("foto", 64)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, uploadRequest(t, path, "foto.png", png))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_LabelSheet_PrintingDisabled(t *testing.T) {
	f := newProductFixture(0)

	w := performRequest(f.router, http.MethodPost, "/catalog/products/labels",
		catalogapp.LabelSheetRequest{ProductIDs: []uuid.UUID{uuid.New()}})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodePrintingDisabled, decodeResponse(t, w, nil).Error.Code)
}

func TestProductHandler_Delete(t *testing.T) {
	f := newProductFixture(0)
	product := newActiveProduct(t, "LEC-001", 10)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Delete", mock.Anything, product.ID).Return(nil)

	w := performRequest(f.router, http.MethodDelete, "/catalog/products/"+product.ID.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	f.products.AssertExpectations(t)
}
