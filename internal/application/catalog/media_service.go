package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/telemetry"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Media errors
var (
	ErrEmptyImage         = shared.NewDomainError("INVALID_IMAGE", "Image file is empty")
	ErrImageTooLarge      = shared.NewDomainError("IMAGE_TOO_LARGE", "Image exceeds the maximum allowed size")
	ErrUnsupportedImage   = shared.NewDomainError("UNSUPPORTED_IMAGE_TYPE", "Only JPEG, PNG and WebP images are accepted")
	ErrNoImage            = shared.NewDomainError("NO_IMAGE", "Product has no image")
	ErrPrintingDisabled   = shared.NewDomainError("PRINTING_DISABLED", "PDF printing is not enabled")
	ErrTooManyLabels      = shared.NewDomainError("TOO_MANY_LABELS", "Too many products requested for one label sheet")
	ErrNoProductsSelected = shared.NewDomainError("INVALID_INPUT", "At least one product is required")
)

// DefaultMaxImageBytes caps product photos at 5 MiB
const DefaultMaxImageBytes int64 = 5 << 20

// MaxLabelsPerSheet bounds a single label sheet request
const MaxLabelsPerSheet = 200

var acceptedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// MediaServiceConfig configures ProductMediaService
type MediaServiceConfig struct {
	MaxImageBytes int64
	QRCodeSize    int
	URLExpiry     time.Duration
}

// ProductMediaService handles product images, QR images and label sheets
type ProductMediaService struct {
	productRepo catalog.ProductRepository
	storage     ObjectStorage
	qr          QRCodeEncoder
	labels      LabelRenderer
	config      MediaServiceConfig
	metrics     *telemetry.SalesMetrics
	logger      *zap.Logger
}

// NewProductMediaService creates a new ProductMediaService.
// labels may be nil when printing is disabled.
func NewProductMediaService(
	productRepo catalog.ProductRepository,
	storage ObjectStorage,
	qr QRCodeEncoder,
	labels LabelRenderer,
	cfg MediaServiceConfig,
	logger *zap.Logger,
) *ProductMediaService {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductMediaService{
		productRepo: productRepo,
		storage:     storage,
		qr:          qr,
		labels:      labels,
		config:      cfg,
		logger:      logger,
	}
}

// SetMetrics enables render duration metrics
func (s *ProductMediaService) SetMetrics(m *telemetry.SalesMetrics) {
	s.metrics = m
}

// UploadImage validates and stores a product photo, replacing any previous one
func (s *ProductMediaService) UploadImage(ctx context.Context, productID uuid.UUID, data []byte) (*ImageResponse, error) {
	ext, contentType, err := s.sniffImage(data)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext)
	if err := s.storage.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("store product image: %w", err)
	}

	previous := product.SetImage(key)
	if err := s.productRepo.Save(ctx, product); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}
	if previous != "" {
		s.deleteObject(ctx, previous)
	}

	return s.imageResponse(ctx, productID, key)
}

// DeleteImage removes the product photo
func (s *ProductMediaService) DeleteImage(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	previous, err := product.ClearImage()
	if err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	s.deleteObject(ctx, previous)
	return nil
}

// ImageURL returns a time-limited download URL for the product photo
func (s *ProductMediaService) ImageURL(ctx context.Context, productID uuid.UUID) (*ImageResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ImageKey == "" {
		return nil, ErrNoImage
	}
	return s.imageResponse(ctx, productID, product.ImageKey)
}

// QRCodePNG renders the product's QR token. size <= 0 uses the configured size.
func (s *ProductMediaService) QRCodePNG(ctx context.Context, productID uuid.UUID, size int) ([]byte, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = s.config.QRCodeSize
	}
	png, err := s.qr.PNG(product.QRCode, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// LabelSheetPDF prints shelf labels for the given products in request order
func (s *ProductMediaService) LabelSheetPDF(ctx context.Context, productIDs []uuid.UUID) ([]byte, error) {
	if s.labels == nil {
		return nil, ErrPrintingDisabled
	}
	if len(productIDs) == 0 {
		return nil, ErrNoProductsSelected
	}
	if len(productIDs) > MaxLabelsPerSheet {
		return nil, ErrTooManyLabels
	}

	found, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	products := make([]*catalog.Product, 0, len(productIDs))
	for _, id := range productIDs {
		p, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Product "+id.String()+" not found")
		}
		products = append(products, p)
	}

	start := time.Now()
	pdf, err := s.labels.LabelSheet(ctx, products)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordRender(ctx, "label_sheet", time.Since(start))
	}
	return pdf, nil
}

func (s *ProductMediaService) sniffImage(data []byte) (ext, contentType string, err error) {
	if len(data) == 0 {
		return "", "", ErrEmptyImage
	}
	if int64(len(data)) > s.config.MaxImageBytes {
		return "", "", ErrImageTooLarge
	}
	mt := mimetype.Detect(data)
	for _, accepted := range acceptedImageTypes {
		if mt.Is(accepted) {
			return mt.Extension(), accepted, nil
		}
	}
	return "", "", ErrUnsupportedImage
}

func (s *ProductMediaService) imageResponse(ctx context.Context, productID uuid.UUID, key string) (*ImageResponse, error) {
	url, expiresAt, err := s.storage.DownloadURL(ctx, key, s.config.URLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign product image: %w", err)
	}
	return &ImageResponse{
		ProductID: productID,
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ProductMediaService) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete product image",
			zap.String("key", key),
			zap.Error(err))
	}
}
