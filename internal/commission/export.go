package commission

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\uFEFF"

var ExportHeader = []string{"Seller", "Client", "Email", "Installment Amount", "Order Total", "Installments", "Status", "Order", "Date"}

func exportRecord(r Result, c ClientLine) []string {
	return []string{
		r.SellerName,
		c.Name,
		c.Email,
		FormatCurrency(c.Amount),
		FormatCurrency(c.OrderTotal),
		optionalInt(int64(c.Installments)),
		c.FinancialStatus,
		optionalInt(c.OrderID),
		FormatDate(c.PaidAt),
	}
}

func optionalInt(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// WriteCSV writes one line per (seller, client) pair, prefixed with a UTF-8 BOM
// so spreadsheet tools pick the right encoding.
func WriteCSV(w io.Writer, results []Result) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, r := range results {
		for _, c := range r.Clients {
			if err := cw.Write(exportRecord(r, c)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

const exportSheet = "Commissions"

// WriteXLSX writes the same table as WriteCSV into a workbook. Amount columns
// are numeric cells.
func WriteXLSX(w io.Writer, results []Result) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, header := range ExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}

	rowIndex := 2
	for _, r := range results {
		for _, c := range r.Clients {
			record := exportRecord(r, c)
			for col, v := range record {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowIndex)
				f.SetCellValue(exportSheet, cell, v)
			}
			if c.Amount != nil {
				f.SetCellFloat(exportSheet, fmt.Sprintf("D%d", rowIndex), c.Amount.InexactFloat64(), 2, 64)
			}
			if c.OrderTotal != nil {
				f.SetCellFloat(exportSheet, fmt.Sprintf("E%d", rowIndex), c.OrderTotal.InexactFloat64(), 2, 64)
			}
			rowIndex++
		}
	}

	_, err = f.WriteTo(w)
	return err
}
