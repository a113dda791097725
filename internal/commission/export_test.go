package commission

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() []Result {
	report := Calculate(
		[]Payment{
			{CustomerName: "Ana Souza", CustomerEmail: "ana@x.com", Amount: amount("1234.56"), OrderTotal: amount("3703.68"),
				Installments: 3, FinancialStatus: "Pago", OrderID: 981, PaidAt: "2026-03-02T14:00:00-03:00"},
			{CustomerName: "Bia Lopes"},
		},
		[]Assignment{
			{CustomerName: "Ana Souza", SellerName: "Carol"},
			{CustomerName: "Bia Lopes", SellerName: "Dani"},
		},
	)
	return report.Results
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\uFEFF"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\uFEFF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ExportHeader, records[0])
	assert.Equal(t, []string{"Carol", "Ana Souza", "ana@x.com", "R$ 1.234,56", "R$ 3.703,68", "3", "Pago", "981", "02/03/2026"}, records[1])
	assert.Equal(t, []string{"Dani", "Bia Lopes", "", "—", "—", "", "", "", ""}, records[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ExportHeader, rows[0])
	assert.Equal(t, "Carol", rows[1][0])

	v, err := f.GetCellValue(exportSheet, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1234.56", v)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "—", FormatCurrency(nil))
	assert.Equal(t, "R$ 0,50", FormatCurrency(amount("0.5")))
	assert.Equal(t, "R$ 1.234,56", FormatCurrency(amount("1234.56")))
	assert.Equal(t, "-R$ 10,00", FormatCurrency(amount("-10")))
}

func TestMonthHelpers(t *testing.T) {
	now := time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-01", CurrentMonth(now))
	assert.Equal(t, []string{"2026-01", "2025-12", "2025-11"}, RecentMonths(now, 3))
	assert.Equal(t, "Fev/2026", FormatMonth("2026-02"))
	assert.Equal(t, "garbage", FormatMonth("garbage"))
	assert.True(t, ValidMonth("2026-12"))
	assert.False(t, ValidMonth("2026-13"))

	start, end, err := MonthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", start)
	assert.Equal(t, "2024-02-29", end)

	_, _, err = MonthRange("02/2024")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "02/03/2026", FormatDate("2026-03-02"))
	assert.Equal(t, "02/03/2026", FormatDate("2026-03-02 23:10:00"))
	assert.Equal(t, "ontem", FormatDate("ontem"))
	assert.Equal(t, "", FormatDate(""))
}
