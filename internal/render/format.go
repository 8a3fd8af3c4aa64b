// Package render turns list pages and notifications into terminal text.
package render

import (
	"time"

	"github.com/shopspring/decimal"

	"reconciliation-portal/internal/config"
)

// Formatter renders money and dates the way the UI settings ask for.
type Formatter struct {
	Currency       string
	DateLayout     string
	DateTimeLayout string
	Location       *time.Location
}

func NewFormatter(ui config.UIConfig, loc *time.Location) Formatter {
	f := Formatter{
		Currency:       ui.CurrencySymbol,
		DateLayout:     ui.DateFormat,
		DateTimeLayout: ui.DateTimeFormat,
		Location:       loc,
	}
	if f.DateLayout == "" {
		f.DateLayout = config.DefaultDateFormat
	}
	if f.DateTimeLayout == "" {
		f.DateTimeLayout = f.DateLayout + " 15:04:05"
	}
	if f.Location == nil {
		f.Location = time.Local
	}
	return f
}

// Money prints d with the currency symbol and two decimals, sign first.
func (f Formatter) Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + f.Currency + d.Neg().StringFixed(2)
	}
	return f.Currency + d.StringFixed(2)
}

func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(f.Location).Format(f.DateLayout)
}

func (f Formatter) DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(f.Location).Format(f.DateTimeLayout)
}

// Period prints a run's date range.
func (f Formatter) Period(start, end time.Time) string {
	return f.Date(start) + " to " + f.Date(end)
}
