package csvimport

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productAliases = map[string]string{
	"codigo":       "code",
	"nombre":       "name",
	"precio":       "price",
	"stock minimo": "min_stock",
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"code", "code"},
		{"  Código ", "codigo"},
		{"Stock Mínimo", "stock_minimo"},
		{"PRECIO (S/)", "precio_s"},
		{"descripción", "descripcion"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
		})
	}
}

func TestParser_CommaFile(t *testing.T) {
	data := "code,name,price\nPAN-001,Pan francés,0.30\n\n , , \nTOR-001,\"Torta, chocolate\",25.00\n"
	p, err := NewParser(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ',', p.Delimiter())

	headers, err := p.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "name", "price"}, headers)
	assert.Empty(t, p.Missing("code", "price"))
	assert.Equal(t, []string{"unit"}, p.Missing("code", "unit"))

	rows, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank rows are skipped")
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Pan francés", rows[0].Get("name"))
	assert.Equal(t, 5, rows[1].Line)
	assert.Equal(t, "Torta, chocolate", rows[1].Get("name"))
	assert.Equal(t, "", rows[1].Get("unit"))
}

func TestParser_SemicolonFileWithBOMAndAliases(t *testing.T) {
	data := "\xEF\xBB\xBFCódigo;Nombre;Precio;Stock Mínimo\nPAN-001;Pan;0,30;10\n"
	p, err := NewParser(strings.NewReader(data), WithAliases(productAliases))
	require.NoError(t, err)
	assert.Equal(t, ';', p.Delimiter())

	row, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "PAN-001", row.Get("code"))
	assert.Equal(t, "0,30", row.Get("price"))
	assert.Equal(t, "10", row.Get("min_stock"))

	_, err = p.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestParser_ShortRecords(t *testing.T) {
	p, err := NewParser(strings.NewReader("code,name,price\nPAN-001\n"))
	require.NoError(t, err)

	row, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "PAN-001", row.Get("code"))
	assert.Equal(t, "", row.Get("price"))
}

func TestParser_MaxRows(t *testing.T) {
	data := "code\nA\nB\nC\n"
	p, err := NewParser(strings.NewReader(data), WithMaxRows(2))
	require.NoError(t, err)

	rows, err := p.ReadAll()
	assert.ErrorIs(t, err, ErrTooManyRows)
	assert.Len(t, rows, 2)
}

func TestParser_InvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrEmptyFile},
		{"only whitespace", " \n\n", ErrEmptyFile},
		{"latin-1", "c\xf3digo,nombre\n", ErrInvalidEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(strings.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrors(t *testing.T) {
	errs := NewErrors(2)
	errs.Addf(2, "price", CodeInvalidValue, "abc", "invalid price %q", "abc")
	errs.Add(RowError{Line: 3, Code: CodeRequired, Message: "code is required"})
	errs.Add(RowError{Line: 4, Code: CodeRequired, Message: "code is required"})

	assert.Equal(t, 3, errs.Total())
	assert.Len(t, errs.Items(), 2)
	assert.True(t, errs.Truncated())
	assert.Equal(t, `line 2, column price: invalid price "abc"`, errs.Items()[0].Error())
	assert.Equal(t, "line 3: code is required", errs.Items()[1].Error())
	assert.Contains(t, errs.String(), "and 1 more")

	var rowErr RowError
	assert.True(t, errors.As(error(errs.Items()[0]), &rowErr))
	assert.Equal(t, "no errors", NewErrors(0).String())
}
