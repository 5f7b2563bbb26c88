package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/csvimport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConflictMode decides what happens to rows whose code already exists
type ConflictMode string

const (
	// ConflictModeSkip leaves existing products untouched
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeUpdate overwrites existing products with the row
	ConflictModeUpdate ConflictMode = "update"
	// ConflictModeFail reports existing codes as row errors
	ConflictModeFail ConflictMode = "fail"
)

// IsValid checks if the conflict mode is known
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// Import errors
var (
	ErrInvalidImportFile = shared.NewDomainError("INVALID_IMPORT_FILE", "The file is not a readable CSV")
	ErrMissingColumns    = shared.NewDomainError("MISSING_COLUMNS", "The file is missing required columns")
	ErrImportTooLarge    = shared.NewDomainError("IMPORT_TOO_LARGE", "The file has too many rows")
	ErrInvalidConflict   = shared.NewDomainError("INVALID_CONFLICT_MODE", "Conflict mode must be skip, update or fail")
)

var importRequiredColumns = []string{"code", "name", "price"}

// Spanish headers used by the store's spreadsheets
var importColumnAliases = map[string]string{
	"codigo":       "code",
	"nombre":       "name",
	"unidad":       "unit",
	"precio":       "price",
	"stock_minimo": "min_stock",
	"categoria":    "category",
	"descripcion":  "description",
	"estado":       "status",
}

// ImportProductsRequest configures one import run
type ImportProductsRequest struct {
	Mode   ConflictMode
	DryRun bool
}

// ImportResult summarizes an import run
type ImportResult struct {
	TotalRows   int                  `json:"total_rows"`
	Created     int                  `json:"created"`
	Updated     int                  `json:"updated"`
	Skipped     int                  `json:"skipped"`
	Failed      int                  `json:"failed"`
	DryRun      bool                 `json:"dry_run"`
	Errors      []csvimport.RowError `json:"errors"`
	TotalErrors int                  `json:"total_errors"`
	Truncated   bool                 `json:"truncated,omitempty"`
}

// ImportConfig limits import runs
type ImportConfig struct {
	MaxRows   int
	MaxErrors int
}

// ProductImportService loads products in bulk from CSV files
type ProductImportService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	eventBus     shared.EventPublisher
	config       ImportConfig
	logger       *zap.Logger
}

// NewProductImportService creates a new ProductImportService. eventBus may be nil.
func NewProductImportService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	eventBus shared.EventPublisher,
	config ImportConfig,
	logger *zap.Logger,
) *ProductImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		eventBus:     eventBus,
		config:       config,
		logger:       logger,
	}
}

// importRow is a parsed, validated line of the file
type importRow struct {
	line        int
	code        string
	name        string
	unit        string
	description string
	price       decimal.Decimal
	stock       *int
	minStock    *int
	category    *uuid.UUID
	hasCategory bool
	active      *bool
}

// Import reads products from r. Rows are saved one by one, so a failing
// row does not undo the rows before it.
func (s *ProductImportService) Import(ctx context.Context, r io.Reader, req ImportProductsRequest) (*ImportResult, error) {
	if req.Mode == "" {
		req.Mode = ConflictModeSkip
	}
	if !req.Mode.IsValid() {
		return nil, ErrInvalidConflict
	}

	parser, err := csvimport.NewParser(r,
		csvimport.WithAliases(importColumnAliases),
		csvimport.WithMaxRows(s.config.MaxRows),
	)
	if err != nil {
		return nil, importFileError(err)
	}
	if _, err := parser.ReadHeader(); err != nil {
		return nil, importFileError(err)
	}
	if missing := parser.Missing(importRequiredColumns...); len(missing) > 0 {
		return nil, shared.NewDomainError(ErrMissingColumns.Code,
			fmt.Sprintf("The file is missing required columns: %s", strings.Join(missing, ", ")))
	}

	rows, err := parser.ReadAll()
	if err != nil {
		return nil, importFileError(err)
	}

	result := &ImportResult{TotalRows: len(rows), DryRun: req.DryRun}
	errs := csvimport.NewErrors(s.config.MaxErrors)
	categories := make(map[string]*uuid.UUID)
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed, ok, err := s.parseRow(ctx, row, categories, errs)
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Failed++
			continue
		}
		if first, dup := seen[parsed.code]; dup {
			errs.Addf(row.Line, "code", csvimport.CodeDuplicateInFile, parsed.code,
				"code already appears on line %d", first)
			result.Failed++
			continue
		}
		seen[parsed.code] = row.Line

		if err := s.apply(ctx, parsed, req, result, errs); err != nil {
			return nil, err
		}
	}

	result.Errors = errs.Items()
	if result.Errors == nil {
		result.Errors = []csvimport.RowError{}
	}
	result.TotalErrors = errs.Total()
	result.Truncated = errs.Truncated()

	s.logger.Info("Product import finished",
		zap.Int("rows", result.TotalRows),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Bool("dry_run", req.DryRun))
	return result, nil
}

// apply creates or updates the product of one row. Only repository
// failures other than row-level problems are returned.
func (s *ProductImportService) apply(ctx context.Context, row *importRow, req ImportProductsRequest, result *ImportResult, errs *csvimport.Errors) error {
	existing, err := s.productRepo.FindByCode(ctx, row.code)
	if err != nil && !shared.IsNotFound(err) {
		return err
	}

	if existing == nil {
		product, err := row.newProduct()
		if err != nil {
			addDomainError(errs, row.line, row.code, err)
			result.Failed++
			return nil
		}
		if !req.DryRun {
			if err := s.productRepo.Save(ctx, product); err != nil {
				if errors.Is(err, shared.ErrAlreadyExists) {
					errs.Addf(row.line, "code", csvimport.CodeAlreadyExists, row.code, "product was created by someone else")
					result.Failed++
					return nil
				}
				return err
			}
			s.publish(ctx, product)
		}
		result.Created++
		return nil
	}

	switch req.Mode {
	case ConflictModeSkip:
		result.Skipped++
		return nil
	case ConflictModeFail:
		errs.Addf(row.line, "code", csvimport.CodeAlreadyExists, row.code, "product already exists")
		result.Failed++
		return nil
	}

	if err := row.applyTo(existing); err != nil {
		addDomainError(errs, row.line, row.code, err)
		result.Failed++
		return nil
	}
	if !req.DryRun {
		if err := s.productRepo.Save(ctx, existing); err != nil {
			return err
		}
		s.publish(ctx, existing)
	}
	result.Updated++
	return nil
}

func (s *ProductImportService) parseRow(ctx context.Context, row *csvimport.Row, categories map[string]*uuid.UUID, errs *csvimport.Errors) (*importRow, bool, error) {
	out := &importRow{
		line:        row.Line,
		code:        strings.ToUpper(row.Get("code")),
		name:        row.Get("name"),
		unit:        strings.ToLower(row.Get("unit")),
		description: row.Get("description"),
	}
	before := errs.Total()

	if out.code == "" {
		errs.Addf(row.Line, "code", csvimport.CodeRequired, "", "code is required")
	}
	if out.name == "" {
		errs.Addf(row.Line, "name", csvimport.CodeRequired, "", "name is required")
	}
	if out.unit == "" {
		out.unit = "unidad"
	}

	if raw := row.Get("price"); raw == "" {
		errs.Addf(row.Line, "price", csvimport.CodeRequired, "", "price is required")
	} else if price, err := parsePrice(raw); err != nil {
		errs.Addf(row.Line, "price", csvimport.CodeInvalidValue, raw, "price must be a positive amount")
	} else {
		out.price = price
	}

	out.stock = parseCount(row, "stock", errs)
	out.minStock = parseCount(row, "min_stock", errs)

	if raw, ok := row.Values["status"]; ok && strings.TrimSpace(raw) != "" {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "active", "activo", "si", "1":
			active := true
			out.active = &active
		case "inactive", "inactivo", "no", "0":
			active := false
			out.active = &active
		default:
			errs.Addf(row.Line, "status", csvimport.CodeInvalidValue, raw, "status must be active or inactive")
		}
	}

	if _, ok := row.Values["category"]; ok {
		out.hasCategory = true
		if name := row.Get("category"); name != "" {
			id, found, err := s.lookupCategory(ctx, name, categories)
			if err != nil {
				return nil, false, err
			}
			if !found {
				errs.Addf(row.Line, "category", csvimport.CodeUnknownRef, name, "category %q does not exist", name)
			}
			out.category = id
		}
	}

	return out, errs.Total() == before, nil
}

// lookupCategory resolves a category name once per import
func (s *ProductImportService) lookupCategory(ctx context.Context, name string, cache map[string]*uuid.UUID) (*uuid.UUID, bool, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, id != nil, nil
	}
	category, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		if shared.IsNotFound(err) {
			cache[key] = nil
			return nil, false, nil
		}
		return nil, false, err
	}
	id := category.ID
	cache[key] = &id
	return &id, true, nil
}

func (s *ProductImportService) publish(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish imported product events",
			zap.String("product_code", product.Code),
			zap.Error(err))
	}
}

func (r *importRow) newProduct() (*catalog.Product, error) {
	product, err := catalog.NewProduct(r.code, r.name, r.unit, r.price)
	if err != nil {
		return nil, err
	}
	minStock := 0
	if r.minStock != nil {
		minStock = *r.minStock
	}
	if err := product.Update(r.name, r.description, r.unit, r.category, minStock); err != nil {
		return nil, err
	}
	if r.stock != nil {
		product.Stock = *r.stock
	}
	if r.active != nil && !*r.active {
		if err := product.Deactivate(); err != nil {
			return nil, err
		}
	}
	return product, nil
}

// applyTo overwrites the columns present in the row. A stock cell is a
// physical count and replaces the current stock.
func (r *importRow) applyTo(product *catalog.Product) error {
	description := product.Description
	if r.description != "" {
		description = r.description
	}
	categoryID := product.CategoryID
	if r.hasCategory {
		categoryID = r.category
	}
	minStock := product.MinStock
	if r.minStock != nil {
		minStock = *r.minStock
	}
	if err := product.Update(r.name, description, r.unit, categoryID, minStock); err != nil {
		return err
	}
	if !product.Price.Equal(r.price) {
		if err := product.SetPrice(r.price); err != nil {
			return err
		}
	}
	if r.stock != nil && *r.stock != product.Stock {
		if err := product.AdjustStock(*r.stock - product.Stock); err != nil {
			return err
		}
	}
	if r.active != nil && *r.active != product.IsActive() {
		if *r.active {
			return product.Activate()
		}
		return product.Deactivate()
	}
	return nil
}

// parsePrice accepts "3.50", "3,50" and a leading "S/"
func parsePrice(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(v, "S/."), "S/"))
	if strings.Contains(v, ",") && !strings.Contains(v, ".") {
		v = strings.Replace(v, ",", ".", 1)
	}
	price, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	if !price.IsPositive() {
		return decimal.Zero, errors.New("price must be positive")
	}
	return price.Round(2), nil
}

func parseCount(row *csvimport.Row, column string, errs *csvimport.Errors) *int {
	raw := row.Get(column)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		errs.Addf(row.Line, column, csvimport.CodeInvalidValue, raw, "%s must be a whole number of zero or more", column)
		return nil
	}
	return &n
}

func addDomainError(errs *csvimport.Errors, line int, code string, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		errs.Add(csvimport.RowError{Line: line, Code: de.Code, Message: de.Message, Value: code})
		return
	}
	errs.Add(csvimport.RowError{Line: line, Code: csvimport.CodeSaveFailed, Message: err.Error(), Value: code})
}

func importFileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewDomainError(ErrImportTooLarge.Code, err.Error())
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader):
		return shared.NewDomainError(ErrInvalidImportFile.Code, err.Error())
	}
	return shared.NewDomainError(ErrInvalidImportFile.Code, fmt.Sprintf("The file could not be parsed: %v", err))
}
