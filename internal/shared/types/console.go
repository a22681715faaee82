package types

// ConsoleInterface is everything the use cases print through.
type ConsoleInterface interface {
	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle

	CreateTable() TableInterface
	DisplayDailyBars(days []DailyBar, currency string)
	DisplayDistribution(slices []DistributionSlice, currency string)
}

// StatusHandle controls a running spinner.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// TableInterface builds a table row by row.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// DailyBar is one day of income and expense, used for the time-series chart.
type DailyBar struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// DistributionSlice is one category share of total expenses.
type DistributionSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
