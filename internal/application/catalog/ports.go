package catalog

import (
	"context"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
)

// ObjectStorage stores product images
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// QRCodeEncoder renders QR payloads as PNG images
type QRCodeEncoder interface {
	PNG(content string, size int) ([]byte, error)
}

// LabelRenderer prints shelf labels for products
type LabelRenderer interface {
	LabelSheet(ctx context.Context, products []*catalog.Product) ([]byte, error)
}
