// Package qrcode renders product QR tokens as PNG images.
package qrcode

import (
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Size bounds in pixels
const (
	MinSize     = 64
	MaxSize     = 2048
	DefaultSize = 256
)

// ErrEmptyContent is returned when asked to encode an empty string
var ErrEmptyContent = errors.New("qr content is required")

// Generator encodes QR codes with a fixed error-correction level.
// Medium recovery keeps the code readable on smudged shelf labels.
type Generator struct {
	level       qrcode.RecoveryLevel
	defaultSize int
}

// NewGenerator creates a generator; size <= 0 uses DefaultSize
func NewGenerator(defaultSize int) *Generator {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	return &Generator{level: qrcode.Medium, defaultSize: clamp(defaultSize)}
}

// PNG encodes content as a square PNG of size pixels. size <= 0 uses the
// generator default; other values are clamped to [MinSize, MaxSize].
func (g *Generator) PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = g.defaultSize
	}

	png, err := qrcode.Encode(content, g.level, clamp(size))
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

func clamp(size int) int {
	switch {
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	default:
		return size
	}
}
