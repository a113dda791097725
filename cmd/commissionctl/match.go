package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"salesdesk/config"
	"salesdesk/internal/commission"
)

type matchOptions struct {
	paymentsFile    string
	assignmentsFile string
	columnsFile     string
	month           string
	out             string
	format          string
}

func newMatchCmd() *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a payments sheet against a seller assignment sheet",
		Long: `Reads a payments sheet and a seller assignment sheet (CSV or XLSX),
credits each payment to a seller and prints the per-seller totals.
With --out the per-client lines are exported as CSV or XLSX.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.paymentsFile, "payments", "p", "", "payments sheet (.csv or .xlsx)")
	f.StringVarP(&opts.assignmentsFile, "assignments", "a", "", "seller assignment sheet (.csv or .xlsx)")
	f.StringVar(&opts.columnsFile, "columns", os.Getenv("COLUMN_ALIASES_FILE"), "YAML file with header aliases")
	f.StringVarP(&opts.month, "month", "m", "", "upload month YYYY-MM (default current month)")
	f.StringVarP(&opts.out, "out", "o", "", "write the export to this file")
	f.StringVar(&opts.format, "format", "", "export format csv|xlsx (default from --out extension)")
	_ = cmd.MarkFlagRequired("payments")
	_ = cmd.MarkFlagRequired("assignments")
	return cmd
}

func readSheet(path string) ([]commission.Row, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := commission.ParseFile(path, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func runMatch(w io.Writer, opts *matchOptions) error {
	month := opts.month
	if month == "" {
		month = commission.CurrentMonth(time.Now())
	}
	if !commission.ValidMonth(month) {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}

	format, err := exportFormat(opts.out, opts.format)
	if err != nil {
		return err
	}

	cols, err := config.LoadColumns(opts.columnsFile)
	if err != nil {
		return err
	}

	paymentRows, err := readSheet(opts.paymentsFile)
	if err != nil {
		return err
	}
	payments, err := commission.PaymentsFromRows(paymentRows, cols)
	if err != nil {
		return fmt.Errorf("payments: %w", err)
	}

	assignmentRows, err := readSheet(opts.assignmentsFile)
	if err != nil {
		return err
	}
	assignments, err := commission.AssignmentsFromRows(assignmentRows, month, cols)
	if err != nil {
		return fmt.Errorf("assignments: %w", err)
	}

	report := commission.Calculate(payments, assignments)
	report.Month = month
	printReport(w, report)

	if opts.out == "" || len(report.Results) == 0 {
		return nil
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	defer f.Close()
	if format == "xlsx" {
		err = commission.WriteXLSX(f, report.Results)
	} else {
		err = commission.WriteCSV(f, report.Results)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(w, "Exported to %s\n", opts.out)
	return f.Close()
}

func exportFormat(out, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}
	switch format {
	case "", "csv":
		return "csv", nil
	case "xlsx":
		return "xlsx", nil
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}

var titleStyle = lipgloss.NewStyle().Bold(true)

func printReport(w io.Writer, report commission.Report) {
	fmt.Fprintln(w, titleStyle.Render("Commissions "+commission.FormatMonth(report.Month)))

	if len(report.Results) == 0 {
		fmt.Fprintf(w, "%s (%d payments, %d mapped clients)\n", report.Warning, report.TotalPayments, report.MappedClients)
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Seller", "Payments", "Total")
	for _, r := range report.Results {
		t.Row(r.SellerName, strconv.Itoa(r.PaymentCount), commission.FormatCurrency(&r.TotalAmount))
	}
	fmt.Fprintln(w, t.Render())

	fmt.Fprintf(w, "Matched %d of %d payments, %d unmatched, total %s\n",
		report.MatchedCount, report.TotalPayments, report.UnmatchedCount, commission.FormatCurrency(&report.TotalAmount))

	for _, a := range report.Ambiguities {
		fmt.Fprintf(w, "ambiguous: %s (%s) credited to %s, also matches %s\n",
			a.CustomerName, a.Tier, a.ChosenSeller, strings.Join(a.OtherSellers, ", "))
	}
}
