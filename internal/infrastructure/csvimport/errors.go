package csvimport

import (
	"fmt"
	"strings"
)

// Row error codes
const (
	CodeRequired        = "REQUIRED"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeDuplicateInFile = "DUPLICATE_IN_FILE"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeUnknownRef      = "UNKNOWN_REFERENCE"
	CodeSaveFailed      = "SAVE_FAILED"
)

// RowError is a problem with one cell or row of the file
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column %s: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Errors collects row errors up to a limit while counting all of them
type Errors struct {
	items []RowError
	limit int
	total int
}

// NewErrors creates a collection keeping at most limit errors
func NewErrors(limit int) *Errors {
	if limit <= 0 {
		limit = 100
	}
	return &Errors{limit: limit}
}

// Add records err
func (e *Errors) Add(err RowError) {
	e.total++
	if len(e.items) < e.limit {
		e.items = append(e.items, err)
	}
}

// Addf records an error built from its parts
func (e *Errors) Addf(line int, column, code, value, format string, args ...any) {
	e.Add(RowError{Line: line, Column: column, Code: code, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Items returns the kept errors
func (e *Errors) Items() []RowError {
	return e.items
}

// Total returns the number of errors added, kept or not
func (e *Errors) Total() int {
	return e.total
}

// Truncated reports whether errors were dropped
func (e *Errors) Truncated() bool {
	return e.total > len(e.items)
}

func (e *Errors) String() string {
	if e.total == 0 {
		return "no errors"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s)", e.total)
	for _, item := range e.items {
		b.WriteString("\n  ")
		b.WriteString(item.Error())
	}
	if e.Truncated() {
		fmt.Fprintf(&b, "\n  ... and %d more", e.total-len(e.items))
	}
	return b.String()
}
