package printing

import (
	"context"
	"time"
)

// Paper is a named page format
type Paper string

const (
	PaperA4        Paper = "A4"
	PaperReceipt80 Paper = "RECEIPT_80MM"
)

// Dimensions returns width and height in millimeters. Receipt rolls report a
// nominal height; the renderer prints them as one continuous page.
func (p Paper) Dimensions() (width, height float64) {
	switch p {
	case PaperReceipt80:
		return 80, 297
	default:
		return 210, 297
	}
}

// IsValid reports whether the paper is known
func (p Paper) IsValid() bool {
	return p == PaperA4 || p == PaperReceipt80
}

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// RenderRequest is an HTML document to print
type RenderRequest struct {
	HTML    string
	Paper   Paper
	Margins Margins
	Title   string
	Timeout time.Duration // overrides the renderer default
}

// RenderResult holds the produced PDF
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer converts HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeInvalidPaper  = "INVALID_PAPER"
	ErrCodeTemplate      = "TEMPLATE_FAILED"
	ErrCodeDisabled      = "PRINTING_DISABLED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
