// Package csvimport reads spreadsheet exports for bulk catalog loads.
// Files must be UTF-8 (a BOM is accepted) and may use comma or semicolon
// separators; headers are matched without case or accents.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Parser errors
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrTooManyRows     = errors.New("CSV file has too many rows")
)

const sniffSize = 4096

// Parser maps CSV records onto canonical column names
type Parser struct {
	reader     *csv.Reader
	aliases    map[string]string
	headers    []string
	line       int
	rows       int
	maxRows    int
	delimiter  rune
	headerRead bool
}

// Option configures a Parser
type Option func(*Parser)

// WithAliases maps alternative header spellings to canonical column names.
// Keys are normalized the same way headers are.
func WithAliases(aliases map[string]string) Option {
	return func(p *Parser) {
		for k, v := range aliases {
			p.aliases[NormalizeHeader(k)] = v
		}
	}
}

// WithMaxRows bounds the number of data rows. Zero means no limit.
func WithMaxRows(n int) Option {
	return func(p *Parser) {
		p.maxRows = n
	}
}

// WithDelimiter forces the separator instead of detecting it
func WithDelimiter(d rune) Option {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// NewParser validates the encoding, detects the separator and prepares r for reading
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	p := &Parser{aliases: make(map[string]string)}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReaderSize(r, sniffSize)
	head, err := buf.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read CSV file: %w", err)
	}
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buf.Discard(3)
		head = head[3:]
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, ErrEmptyFile
	}
	if !validPrefix(head) {
		return nil, ErrInvalidEncoding
	}
	if p.delimiter == 0 {
		p.delimiter = detectDelimiter(head)
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

// validPrefix accepts a rune cut at the end of the sniffed block
func validPrefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// detectDelimiter picks ';' when the header line has more semicolons than
// commas, which is what spreadsheets with a decimal comma export
func detectDelimiter(head []byte) rune {
	first, _, _ := bytes.Cut(head, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

// Delimiter returns the separator in use
func (p *Parser) Delimiter() rune {
	return p.delimiter
}

// ReadHeader reads the first record and resolves column names
func (p *Parser) ReadHeader() ([]string, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	p.line = 1
	p.headerRead = true
	p.headers = make([]string, len(record))
	for i, h := range record {
		name := NormalizeHeader(h)
		if canonical, ok := p.aliases[name]; ok {
			name = canonical
		}
		p.headers[i] = name
	}
	if len(p.headers) == 0 || (len(p.headers) == 1 && p.headers[0] == "") {
		return nil, ErrMissingHeader
	}
	return p.headers, nil
}

// Missing lists the required columns absent from the header
func (p *Parser) Missing(required ...string) []string {
	present := make(map[string]bool, len(p.headers))
	for _, h := range p.headers {
		present[h] = true
	}
	var missing []string
	for _, r := range required {
		if !present[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

// Row is one data record keyed by canonical column name
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of column, empty when absent
func (r *Row) Get(column string) string {
	return r.Values[column]
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Next returns the next non-blank row or io.EOF
func (p *Parser) Next() (*Row, error) {
	if !p.headerRead {
		if _, err := p.ReadHeader(); err != nil {
			return nil, err
		}
	}

	for {
		record, err := p.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read row after line %d: %w", p.line, err)
		}
		// csv.Reader skips empty lines, so take the line from the reader
		p.line, _ = p.reader.FieldPos(0)

		row := &Row{Line: p.line, Values: make(map[string]string, len(p.headers))}
		for i, h := range p.headers {
			if h == "" || i >= len(record) {
				continue
			}
			row.Values[h] = strings.TrimSpace(record[i])
		}
		if row.IsEmpty() {
			continue
		}

		p.rows++
		if p.maxRows > 0 && p.rows > p.maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, p.maxRows)
		}
		return row, nil
	}
}

// ReadAll returns every remaining non-blank row
func (p *Parser) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// NormalizeHeader lower-cases a header, drops accents and joins words with
// underscores: "Stock Mínimo" becomes "stock_minimo".
func NormalizeHeader(h string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(stripMarks, strings.TrimSpace(h))
	if err != nil {
		s = strings.TrimSpace(h)
	}
	s = strings.ToLower(s)
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), "_")
}
