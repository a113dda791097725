package commission

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"

	missingValue = "—"
)

var monthAbbrev = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

func CurrentMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

func ValidMonth(month string) bool {
	_, err := time.Parse(MonthLayout, month)
	return err == nil
}

// MonthRange returns the first and last calendar day of month as YYYY-MM-DD.
func MonthRange(month string) (string, string, error) {
	start, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q: %w", month, err)
	}
	end := start.AddDate(0, 1, -1)
	return start.Format(DateLayout), end.Format(DateLayout), nil
}

// FormatMonth renders "2026-03" as "Mar/2026". Unparseable input is returned as is.
func FormatMonth(month string) string {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%s/%d", monthAbbrev[t.Month()-1], t.Year())
}

// RecentMonths lists n months ending with the month of now, newest first.
func RecentMonths(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDate(0, -i, 0).Format(MonthLayout))
	}
	return out
}

// FormatCurrency renders an amount in BRL the way the sales team reads it,
// e.g. "R$ 1.234,56".
func FormatCurrency(d *decimal.Decimal) string {
	if d == nil {
		return missingValue
	}
	f, _ := d.Abs().Float64()
	s := brPrinter.Sprintf("R$ %v", number.Decimal(f, number.Scale(2)))
	if d.IsNegative() {
		return "-" + s
	}
	return s
}

var paidAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// FormatDate renders a timestamp as dd/mm/yyyy. Values no layout accepts are
// returned untouched.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range paidAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}
