package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
)

// ExportRepositoryImpl writes dashboard snapshots to disk.
type ExportRepositoryImpl struct {
	currency string
	now      func() time.Time
}

// NewExportRepository creates an exporter that labels amounts with currency.
func NewExportRepository(currency string) repository.ExportRepository {
	return &ExportRepositoryImpl{currency: strings.ToUpper(currency), now: time.Now}
}

// ExportToCSV writes the transactions of the current page, one row each.
func (r *ExportRepositoryImpl) ExportToCSV(result entity.SyncResult, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"ID", "Date", "Type", "Description", "Category", "Amount (" + r.currency + ")"}); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, tx := range result.Transactions {
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date,
			string(tx.Type),
			tx.Description,
			categoryLabel(tx),
			tx.AmountOrZero().StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToJSON writes the whole snapshot.
func (r *ExportRepositoryImpl) ExportToJSON(result entity.SyncResult, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	doc := struct {
		GeneratedAt string            `json:"generatedAt"`
		Currency    string            `json:"currency"`
		Dashboard   entity.SyncResult `json:"dashboard"`
	}{
		GeneratedAt: r.now().UTC().Format(time.RFC3339),
		Currency:    r.currency,
		Dashboard:   result,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding JSON: %w", err)
	}
	if err := os.WriteFile(outputFilename, data, 0644); err != nil {
		return "", fmt.Errorf("error writing JSON file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToPDF writes a one-document report: totals, distribution, daily series and transactions.
func (r *ExportRepositoryImpl) ExportToPDF(result entity.SyncResult, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated by Finance Dashboard (Go) | %s", r.now().Format(entity.DateLayout))), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Finance Dashboard: "+result.Identity), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(50, 50, 50)
	}
	row := func(widths []float64, cells ...string) {
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, tr(cell), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	section("Summary")
	totals := []float64{60, 60, 60}
	pdf.SetFont("Arial", "B", 10)
	row(totals, "Total Income", "Total Expense", "Balance")
	pdf.SetFont("Arial", "", 10)
	row(totals,
		r.amount(entity.OrZero(result.Summary.TotalIncome)),
		r.amount(entity.OrZero(result.Summary.TotalExpense)),
		r.amount(entity.OrZero(result.Summary.Balance)),
	)
	pdf.Ln(6)

	if result.MeaningfulDistribution {
		section("Expense Distribution (current page)")
		for _, c := range result.Categories {
			row([]float64{120, 60}, c.Name, r.amount(c.Value))
		}
		pdf.Ln(6)
	}

	if len(result.CategoryTotals) > 0 {
		section("Totals by Category")
		for _, c := range result.CategoryTotals {
			row([]float64{90, 40, 60}, c.CategoryName, string(c.Type), r.amount(entity.OrZero(c.TotalAmount)))
		}
		pdf.Ln(6)
	}

	if len(result.Daily) > 0 {
		section("Daily Activity")
		widths := []float64{50, 60, 60}
		pdf.SetFont("Arial", "B", 10)
		row(widths, "Date", "Income", "Expense")
		pdf.SetFont("Arial", "", 10)
		for _, d := range result.Daily {
			row(widths, d.Date, r.amount(entity.OrZero(d.TotalIncome)), r.amount(entity.OrZero(d.TotalExpense)))
		}
		pdf.Ln(6)
	}

	section(fmt.Sprintf("Transactions (page %d)", result.Pagination.Page+1))
	widths := []float64{25, 22, 70, 38, 35}
	pdf.SetFont("Arial", "B", 10)
	row(widths, "Date", "Type", "Description", "Category", "Amount")
	pdf.SetFont("Arial", "", 9)
	if len(result.Transactions) == 0 {
		pdf.Cell(0, 6, "No transactions found.")
		pdf.Ln(-1)
	}
	for _, tx := range result.Transactions {
		desc := tx.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		row(widths, tx.Date, string(tx.Type), desc, categoryLabel(tx), r.amount(tx.AmountOrZero()))
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) amount(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", r.currency, d.StringFixed(2))
}

func categoryLabel(tx entity.TransactionRecord) string {
	if name := tx.CategoryName(); name != "" {
		return name
	}
	return entity.UncategorizedLabel
}

func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, timestamp, ext)), nil
}
