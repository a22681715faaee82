package entity

import "github.com/shopspring/decimal"

// UncategorizedLabel names expenses that carry no category.
const UncategorizedLabel = "Uncategorized"

// SummarySnapshot holds the account totals of one sync cycle.
type SummarySnapshot struct {
	TotalIncome  decimal.NullDecimal `json:"totalIncome"`
	TotalExpense decimal.NullDecimal `json:"totalExpense"`
	Balance      decimal.NullDecimal `json:"balance"`
	Username     string              `json:"username,omitempty"`
}

// CategoryTotal is one row of the server-side by-category summary (full history).
type CategoryTotal struct {
	CategoryName string              `json:"categoryName"`
	TotalAmount  decimal.NullDecimal `json:"totalAmount"`
	Type         TransactionType     `json:"type"`
}

// DailyAggregate is one day of the server-side time series.
type DailyAggregate struct {
	Date         string              `json:"date"`
	TotalIncome  decimal.NullDecimal `json:"totalIncome"`
	TotalExpense decimal.NullDecimal `json:"totalExpense"`
}

// CategoryAggregate is the client-side expense total of one category on the current page.
type CategoryAggregate struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}
