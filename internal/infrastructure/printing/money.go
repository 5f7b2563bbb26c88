package printing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencySymbols = map[string]string{
	"PEN": "S/",
	"USD": "$",
	"EUR": "€",
}

// MoneyFormatter prints amounts with locale grouping and two decimals
type MoneyFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewMoneyFormatter creates a formatter for an ISO 4217 currency and a BCP 47 locale
func NewMoneyFormatter(code, locale string) (*MoneyFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}
	return &MoneyFormatter{printer: message.NewPrinter(tag), symbol: symbol}, nil
}

// Format renders an amount such as "S/ 1,234.50"
func (m *MoneyFormatter) Format(d decimal.Decimal) string {
	return m.symbol + " " + m.Number(d)
}

// Number renders an amount without the currency symbol
func (m *MoneyFormatter) Number(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return m.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// Percent renders a percentage with up to two decimals
func (m *MoneyFormatter) Percent(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return m.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2))) + "%"
}
