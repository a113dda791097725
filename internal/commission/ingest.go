package commission

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AssignmentsFromRows maps sheet rows to assignments for month. Rows without a
// customer or seller name are dropped.
func AssignmentsFromRows(rows []Row, month string, cols Columns) ([]Assignment, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	out := make([]Assignment, 0, len(rows))
	for _, row := range rows {
		idHeader, sellerID := findHeader(row, cols.SellerID, "")
		_, sellerName := findHeader(row, cols.SellerName, idHeader)
		a := Assignment{
			CustomerName:  FindColumn(row, cols.CustomerName...),
			CustomerEmail: FindColumn(row, cols.Email...),
			SellerID:      sellerID,
			SellerName:    sellerName,
			Product:       FindColumn(row, cols.Product...),
			UploadMonth:   month,
		}
		if a.CustomerName == "" || a.SellerName == "" {
			continue
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil, &ColumnsError{Concepts: []string{"name", "email", "seller"}}
	}
	return out, nil
}

// PaymentsFromRows maps sheet rows to payments. Rows without a payer name are dropped.
func PaymentsFromRows(rows []Row, cols Columns) ([]Payment, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	out := make([]Payment, 0, len(rows))
	for _, row := range rows {
		p := Payment{
			CustomerName:  FindColumn(row, cols.PayerName...),
			CustomerEmail: FindColumn(row, cols.Email...),
			Amount:        ParseAmount(FindColumn(row, cols.Amount...)),
			PaidAt:        FindColumn(row, cols.PaidAt...),
			Product:       FindColumn(row, cols.Product...),
		}
		if p.CustomerName == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, &ColumnsError{Concepts: []string{"name"}}
	}
	return out, nil
}

var amountNoise = regexp.MustCompile(`[^\d,.\-]`)

// ParseAmount reads money typed by people: currency symbols are dropped and the
// rightmost of "," or "." is taken as the decimal separator. Returns nil when
// nothing numeric is left.
func ParseAmount(s string) *decimal.Decimal {
	s = amountNoise.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
