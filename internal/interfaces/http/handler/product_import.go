package handler

import (
	"strconv"

	catalogapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ImportFormField is the multipart field carrying the CSV file
const ImportFormField = "file"

// ProductImportHandler loads catalogue spreadsheets
type ProductImportHandler struct {
	BaseHandler
	importService *catalogapp.ProductImportService
	maxBytes      int64
}

// NewProductImportHandler creates a new ProductImportHandler
func NewProductImportHandler(importService *catalogapp.ProductImportService, maxBytes int64) *ProductImportHandler {
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &ProductImportHandler{importService: importService, maxBytes: maxBytes}
}

// ImportProducts godoc
// @Summary      Import products from CSV
// @Description  Comma or semicolon separated, UTF-8. Required columns: code, name, price.
// @Description  Optional: unit, stock, min_stock, category, description, status. Spanish headers are accepted.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData file   true  "CSV file"
// @Param        mode    query    string false "Existing codes" Enums(skip, update, fail) default(skip)
// @Param        dry_run query    bool   false "Validate without saving"
// @Success      200 {object} dto.Response{data=catalog.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/import [post]
func (h *ProductImportHandler) ImportProducts(c *gin.Context) {
	req := catalogapp.ImportProductsRequest{Mode: catalogapp.ConflictMode(c.DefaultQuery("mode", string(catalogapp.ConflictModeSkip)))}
	if raw := c.Query("dry_run"); raw != "" {
		dryRun, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "dry_run must be true or false")
			return
		}
		req.DryRun = dryRun
	}

	fileHeader, err := c.FormFile(ImportFormField)
	if err != nil {
		h.BadRequest(c, "Missing CSV file")
		return
	}
	if fileHeader.Size > h.maxBytes {
		h.HandleError(c, catalogapp.ErrImportTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable CSV file")
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), file, req)
	h.reply(c, result, err)
}
