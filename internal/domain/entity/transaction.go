package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and display format of transaction dates.
const DateLayout = "2006-01-02"

// TransactionType is either INCOME or EXPENSE.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

var (
	ErrEmptyDescription = errors.New("description is required")
	ErrMissingAmount    = errors.New("amount is required")
	ErrInvalidAmount    = errors.New("amount must be greater than 0")
	ErrInvalidType      = errors.New("type must be INCOME or EXPENSE")
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
)

// Category is the optional classification attached to a transaction.
type Category struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// TransactionRecord is an immutable snapshot of a transaction as received from the service.
type TransactionRecord struct {
	ID          int64               `json:"id"`
	Type        TransactionType     `json:"type"`
	Description string              `json:"description"`
	Amount      decimal.NullDecimal `json:"amount"`
	Date        string              `json:"date"`
	Category    *Category           `json:"category,omitempty"`
}

// AmountOrZero returns the amount, treating a missing value as zero.
func (t TransactionRecord) AmountOrZero() decimal.Decimal {
	return OrZero(t.Amount)
}

// CategoryName returns the category name or "" when uncategorized.
func (t TransactionRecord) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// OrZero unwraps a nullable amount, mapping null to zero.
func OrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// TransactionDraft is a user-submitted transaction before the service accepts it.
type TransactionDraft struct {
	Description string
	Amount      decimal.NullDecimal
	Type        TransactionType
	Date        string
	CategoryID  *int64
}

// Normalize fills defaults: EXPENSE type and today's date.
func (d TransactionDraft) Normalize(today time.Time) TransactionDraft {
	d.Description = strings.TrimSpace(d.Description)
	if d.Type == "" {
		d.Type = Expense
	}
	if strings.TrimSpace(d.Date) == "" {
		d.Date = today.Format(DateLayout)
	}
	return d
}

// Validate checks the fields the service requires.
func (d TransactionDraft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if !d.Amount.Valid {
		return ErrMissingAmount
	}
	if !d.Amount.Decimal.IsPositive() {
		return ErrInvalidAmount
	}
	if d.Type != Income && d.Type != Expense {
		return ErrInvalidType
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// TransactionPage is one page of the paginated transaction listing.
// TotalKnown is false when the server omitted the page count.
type TransactionPage struct {
	Content    []TransactionRecord `json:"content"`
	TotalPages int                 `json:"totalPages"`
	TotalKnown bool                `json:"-"`
}

// TransactionFilter restricts the listing to an inclusive date range. Empty bounds are open.
type TransactionFilter struct {
	From string
	To   string
}

// Validate checks both bounds are well-formed and ordered.
func (f TransactionFilter) Validate() error {
	var from, to time.Time
	var err error
	if f.From != "" {
		if from, err = time.Parse(DateLayout, f.From); err != nil {
			return ErrInvalidDate
		}
	}
	if f.To != "" {
		if to, err = time.Parse(DateLayout, f.To); err != nil {
			return ErrInvalidDate
		}
	}
	if f.From != "" && f.To != "" && to.Before(from) {
		return errors.New("end date must not be before start date")
	}
	return nil
}
