package handler

import (
	"io"
	"strconv"

	catalogapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImageFormField is the multipart field carrying a product image
const ImageFormField = "image"

// ProductHandler handles product endpoints for the admin panel and the
// public shop
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	mediaService   *catalogapp.ProductMediaService
	maxImageBytes  int64
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, mediaService *catalogapp.ProductMediaService, maxImageBytes int64) *ProductHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = catalogapp.DefaultMaxImageBytes
	}
	return &ProductHandler{
		productService: productService,
		mediaService:   mediaService,
		maxImageBytes:  maxImageBytes,
	}
}

// Create godoc
// @Summary      Create product
// @Description  Create a product. A QR code token is generated automatically.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	h.replyCreated(c, product, err)
}

// GetByID godoc
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	h.reply(c, product, err)
}

// GetByCode godoc
// @Summary      Get product by code
// @Tags         products
// @Produce      json
// @Param        code path string true "Product code"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/code/{code} [get]
func (h *ProductHandler) GetByCode(c *gin.Context) {
	product, err := h.productService.GetByCode(c.Request.Context(), c.Param("code"))
	h.reply(c, product, err)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search      query string false "Code or name search"
// @Param        status      query string false "Status" Enums(active, inactive)
// @Param        category_id query string false "Category ID" format(uuid)
// @Param        low_stock   query bool   false "Only products at or under minimum stock"
// @Param        page        query int    false "Page" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        order_by    query string false "Sort field"
// @Param        order_dir   query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	h.list(c, filter)
}

// ListPublic godoc
// @Summary      List shop products
// @Description  Active products for the shopper's catalogue browser
// @Tags         shop
// @Produce      json
// @Param        search      query string false "Code or name search"
// @Param        category_id query string false "Category ID" format(uuid)
// @Param        page        query int    false "Page" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Router       /shop/products [get]
func (h *ProductHandler) ListPublic(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	filter.Status = string(catalog.ProductStatusActive)
	filter.LowStock = false
	h.list(c, filter)
}

func (h *ProductHandler) list(c *gin.Context, filter catalogapp.ProductListFilter) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// ListLowStock godoc
// @Summary      Low stock products
// @Description  Active products at or under their minimum stock, lowest first
// @Tags         products
// @Produce      json
// @Param        page      query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /catalog/products/low-stock [get]
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	var page dto.ListRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BindError(c, err)
		return
	}
	page.Normalize()

	products, total, err := h.productService.ListLowStock(c.Request.Context(), page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, page.Page, page.PageSize)
}

// GetByQRCode godoc
// @Summary      Look up a scanned QR code
// @Description  Resolve the token printed on a shelf label. Inactive products are unavailable.
// @Tags         shop
// @Produce      json
// @Param        code path string true "QR code token"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/products/qr/{code} [get]
func (h *ProductHandler) GetByQRCode(c *gin.Context) {
	product, err := h.productService.GetByQRCode(c.Request.Context(), c.Param("code"))
	h.reply(c, product, err)
}

// Update godoc
// @Summary      Update product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Product ID" format(uuid)
// @Param        request body catalog.UpdateProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	h.reply(c, product, err)
}

// UpdatePrice godoc
// @Summary      Change price
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Product ID" format(uuid)
// @Param        request body catalog.UpdatePriceRequest true "New price"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/price [put]
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdatePriceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdatePrice(c.Request.Context(), id, req)
	h.reply(c, product, err)
}

// AdjustStock godoc
// @Summary      Adjust stock
// @Description  Apply a signed stock correction. Stock never goes negative.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Product ID" format(uuid)
// @Param        request body catalog.AdjustStockRequest true "Correction"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalogapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), id, req)
	h.reply(c, product, err)
}

// SetNutrition godoc
// @Summary      Set nutrition facts
// @Description  Store nutrition values and recompute the octagon warnings. An empty body clears them.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                   true  "Product ID" format(uuid)
// @Param        request body catalog.NutritionRequest false "Nutrition facts"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/nutrition [put]
func (h *ProductHandler) SetNutrition(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req *catalogapp.NutritionRequest
	if c.Request.ContentLength != 0 {
		req = &catalogapp.NutritionRequest{}
		if !h.bindJSON(c, req) {
			return
		}
	}

	product, err := h.productService.SetNutrition(c.Request.Context(), id, req)
	h.reply(c, product, err)
}

// Activate godoc
// @Summary      Activate product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Activate(c.Request.Context(), id)
	h.reply(c, product, err)
}

// Deactivate godoc
// @Summary      Deactivate product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Deactivate(c.Request.Context(), id)
	h.reply(c, product, err)
}

// RegenerateQRCode godoc
// @Summary      Regenerate QR code
// @Description  Issue a new QR token. Labels printed with the old token stop resolving.
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/qr [post]
func (h *ProductHandler) RegenerateQRCode(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.RegenerateQRCode(c.Request.Context(), id)
	h.reply(c, product, err)
}

// QRCodePNG godoc
// @Summary      QR code image
// @Tags         products
// @Produce      png
// @Param        id   path  string true  "Product ID" format(uuid)
// @Param        size query int    false "Edge length in pixels"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id}/qr.png [get]
func (h *ProductHandler) QRCodePNG(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 64 || v > 2048 {
			h.BadRequest(c, "size must be between 64 and 2048")
			return
		}
		size = v
	}

	png, err := h.mediaService.QRCodePNG(c.Request.Context(), id, size)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.File(c, "image/png", id.String()+".png", png, false)
}

// UploadImage godoc
// @Summary      Upload product image
// @Description  JPEG, PNG or WebP. The content is sniffed; the declared type is ignored.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Product ID" format(uuid)
// @Param        image formData file   true "Image file"
// @Success      200 {object} dto.Response{data=catalog.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/image [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(ImageFormField)
	if err != nil {
		h.BadRequest(c, "Missing image file")
		return
	}
	if fileHeader.Size > h.maxImageBytes {
		h.HandleError(c, catalogapp.ErrImageTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		h.BadRequest(c, "Unreadable image file")
		return
	}

	image, err := h.mediaService.UploadImage(c.Request.Context(), id, data)
	h.reply(c, image, err)
}

// GetImage godoc
// @Summary      Product image URL
// @Description  Presigned download URL for the product image
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.ImageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/image [get]
func (h *ProductHandler) GetImage(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	image, err := h.mediaService.ImageURL(c.Request.Context(), id)
	h.reply(c, image, err)
}

// DeleteImage godoc
// @Summary      Remove product image
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/image [delete]
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.mediaService.DeleteImage(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// LabelSheet godoc
// @Summary      Print shelf labels
// @Description  A4 PDF with one QR label per product, in request order
// @Tags         products
// @Accept       json
// @Produce      application/pdf
// @Param        request body catalog.LabelSheetRequest true "Products to print"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/labels [post]
func (h *ProductHandler) LabelSheet(c *gin.Context) {
	var req catalogapp.LabelSheetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pdf, err := h.mediaService.LabelSheetPDF(c.Request.Context(), req.ProductIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.File(c, "application/pdf", "etiquetas.pdf", pdf, true)
}

// Delete godoc
// @Summary      Delete product
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
