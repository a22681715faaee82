package console

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// barWidth is the length of the longest bar in the charts.
const barWidth = 40

// Console implements types.ConsoleInterface on top of pterm.
type Console struct{}

// NewConsole creates a new Console.
func NewConsole() *Console {
	return &Console{}
}

func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status starts a spinner with the given message.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(message)
	return &statusHandle{spinner: spinner}
}

var (
	BrightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Table collects rows and renders them as a boxed pterm table.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable creates an empty table.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

func (t *Table) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, row)
}

// Render returns the table as a string.
func (t *Table) Render() string {
	data := pterm.TableData{t.columns}
	for _, row := range t.rows {
		data = append(data, row)
	}

	rendered, _ := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
	return rendered
}

// DisplayDailyBars draws income and expense bars per day, scaled to the largest value.
func (c *Console) DisplayDailyBars(days []types.DailyBar, currency string) {
	maxValue := 0.0
	for _, d := range days {
		if d.Income > maxValue {
			maxValue = d.Income
		}
		if d.Expense > maxValue {
			maxValue = d.Expense
		}
	}

	if maxValue == 0 {
		pterm.Warning.Println("No daily activity to chart yet")
		return
	}

	data := pterm.TableData{{"Date", "Income", "", "Expense", ""}}
	for _, d := range days {
		data = append(data, []string{
			d.Date,
			FormatAmount(decimal.NewFromFloat(d.Income), currency),
			pterm.FgGreen.Sprint(bar(d.Income, maxValue)),
			FormatAmount(decimal.NewFromFloat(d.Expense), currency),
			pterm.FgRed.Sprint(bar(d.Expense, maxValue)),
		})
	}

	rendered, _ := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	panel := pterm.DefaultBox.WithTitle("Income vs Expense by Day").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(rendered)
	fmt.Println("\n" + panel)
}

// DisplayDistribution draws each category's share of total expenses.
func (c *Console) DisplayDistribution(slices []types.DistributionSlice, currency string) {
	total := 0.0
	maxValue := 0.0
	for _, s := range slices {
		total += s.Value
		if s.Value > maxValue {
			maxValue = s.Value
		}
	}
	if total == 0 {
		pterm.Info.Println("No expenses on this page")
		return
	}

	data := pterm.TableData{{"Category", "Amount", "Share", ""}}
	for _, s := range slices {
		data = append(data, []string{
			s.Name,
			FormatAmount(decimal.NewFromFloat(s.Value), currency),
			fmt.Sprintf("%.1f%%", s.Value/total*100),
			pterm.FgMagenta.Sprint(bar(s.Value, maxValue)),
		})
	}

	rendered, _ := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	panel := pterm.DefaultBox.WithTitle("Expense Distribution").WithBoxStyle(pterm.NewStyle(pterm.FgMagenta)).Sprint(rendered)
	fmt.Println("\n" + panel)
}

func bar(value, maxValue float64) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(value / maxValue * barWidth)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// FormatAmount renders amount in the given ISO 4217 currency, rounded to the
// currency's minor unit. Unknown codes fall back to a plain two-decimal number.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}
